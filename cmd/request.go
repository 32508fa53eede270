package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/psds-microservice/dispatch/internal/database"
	"github.com/psds-microservice/dispatch/internal/model"
	"github.com/psds-microservice/dispatch/internal/service"
)

var (
	reqInput   service.RequestInput
	reqFilter  service.Filter
	reqPeriod  string
	reqPeriods []string
	reqLimit   int
)

var requestCmd = &cobra.Command{
	Use:     "request",
	Aliases: []string{"req"},
	Short:   "Create, edit and search requests",
}

func inputFlags(fs *pflag.FlagSet) {
	fs.StringVar(&reqInput.Name, "name", "", "имя заявителя")
	fs.StringVar(&reqInput.Surname, "surname", "", "фамилия заявителя")
	fs.StringVar(&reqInput.Problem, "problem", "", "описание проблемы")
	fs.StringVar(&reqInput.Deadline, "deadline", "", "срок выполнения, часов")
	fs.StringVar(&reqInput.Phone, "phone", "", "телефон")
	fs.StringVar(&reqInput.Address, "address", "", "адрес")
	fs.StringVar(&reqInput.AssignmentDate, "assignment-date", "", "дата назначения (ГГГГ-ММ-ДД)")
	fs.StringVar(&reqInput.Status, "status", "", "в работе | не выполнено | выполнено")
	fs.StringVar(&reqInput.Improvement, "improvement", "", "благоустройство")
	fs.StringVar(&reqInput.Brigade, "brigade", "", "номер бригады")
	fs.StringVar(&reqInput.Category, "category", "", "Водоотведение | Водоснабжение")
}

func filterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&reqFilter.Keyword, "keyword", "", "поиск по id или тексту")
	fs.StringVar(&reqFilter.Category, "category", "", "категория (подстрока)")
	fs.StringVar(&reqFilter.Problem, "problem", "", "проблема (подстрока)")
	fs.StringVar(&reqFilter.Status, "status", "", "статус (префикс)")
	fs.StringVar(&reqFilter.Operator, "operator", "", "логин оператора")
	fs.StringVar(&reqFilter.From, "from", "", "дата с (ГГГГ-ММ-ДД или ДД.ММ.ГГГГ)")
	fs.StringVar(&reqFilter.To, "to", "", "дата по")
	fs.StringSliceVar(&reqPeriods, "period", nil, "периоды: app_YYYY_MM.db или ГГГГ-ММ; по умолчанию все")
}

func parseIDArg(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid request id %q", s)
	}
	return id, nil
}

func printRows(rows []model.RequestRow) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ПЕРИОД\tID\tДАТА\tЗАЯВИТЕЛЬ\tАДРЕС\tПРОБЛЕМА\tСТАТУС\tБРИГАДА\tОПЕРАТОР")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Period, r.ID, r.CreatedAt, r.Applicant(), r.Address, r.Problem, r.Status, model.BrigadeDisplay(r.BrigadeNumber), r.Username)
	}
	return w.Flush()
}

var requestAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a request in the active period",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		caller, err := st.login(ctx)
		if err != nil {
			return err
		}
		if err := st.usePeriod(ctx, reqPeriod); err != nil {
			return err
		}
		id, err := st.requests.Create(ctx, caller, reqInput)
		if err != nil {
			return err
		}
		row, err := st.requests.Get(ctx, "", id)
		if err != nil {
			return err
		}
		return printJSON(row)
	},
}

var requestUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace the editable fields of a request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if _, err := st.login(ctx); err != nil {
			return err
		}
		if err := st.requests.Update(ctx, reqPeriod, id, reqInput); err != nil {
			return err
		}
		row, err := st.requests.Get(ctx, reqPeriod, id)
		if err != nil {
			return err
		}
		return printJSON(row)
	},
}

var requestStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Set the status of a request",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if _, err := st.login(ctx); err != nil {
			return err
		}
		if err := st.requests.SetStatus(ctx, reqPeriod, id, args[1]); err != nil {
			return err
		}
		fmt.Printf("request %d: status updated\n", id)
		return nil
	},
}

var requestDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a request (own requests, or any for admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		caller, err := st.login(ctx)
		if err != nil {
			return err
		}
		if err := st.requests.Delete(ctx, caller, reqPeriod, id); err != nil {
			return err
		}
		fmt.Printf("request %d deleted\n", id)
		return nil
	},
}

var requestGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one request (active period unless --period)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if _, err := st.login(ctx); err != nil {
			return err
		}
		row, err := st.requests.Get(ctx, reqPeriod, id)
		if err != nil {
			return err
		}
		return printJSON(row)
	},
}

var requestRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show the latest requests of the active period",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if _, err := st.login(ctx); err != nil {
			return err
		}
		if err := st.usePeriod(ctx, reqPeriod); err != nil {
			return err
		}
		rows, err := st.requests.Recent(ctx, reqLimit)
		if err != nil {
			return err
		}
		return printRows(rows)
	},
}

var requestListCmd = &cobra.Command{
	Use:   "list",
	Short: "Search requests across periods",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if _, err := st.login(ctx); err != nil {
			return err
		}
		periods, err := database.ResolvePeriods(cfg.BaseDir, reqPeriods)
		if err != nil {
			return err
		}
		rows, err := st.requests.List(ctx, reqFilter, periods)
		if err != nil {
			return err
		}
		if err := printRows(rows); err != nil {
			return err
		}
		fmt.Printf("total: %d\n", len(rows))
		return nil
	},
}

func init() {
	inputFlags(requestAddCmd.Flags())
	inputFlags(requestUpdateCmd.Flags())
	for _, c := range []*cobra.Command{requestAddCmd, requestUpdateCmd, requestStatusCmd, requestDeleteCmd, requestGetCmd, requestRecentCmd} {
		c.Flags().StringVar(&reqPeriod, "period", "", "период: app_YYYY_MM.db или ГГГГ-ММ (по умолчанию текущий месяц)")
	}
	requestRecentCmd.Flags().IntVar(&reqLimit, "limit", service.DefaultRecentLimit, "сколько заявок показать")
	filterFlags(requestListCmd.Flags())

	requestCmd.AddCommand(requestAddCmd, requestUpdateCmd, requestStatusCmd, requestDeleteCmd,
		requestGetCmd, requestRecentCmd, requestListCmd)
}
