package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/psds-microservice/dispatch/internal/database"
)

// SignatureFunc возвращает текущий отпечаток активной базы.
type SignatureFunc func(ctx context.Context) (database.Signature, error)

// Poller следит за изменениями активной базы, сделанными другими операторами:
// по таймеру и по событиям записи в *.db каталога баз. При смене отпечатка вызывает onChange.
type Poller struct {
	mu       sync.Mutex
	dir      string
	interval time.Duration
	sign     SignatureFunc
	onChange func(database.Signature)
	log      *zap.Logger

	watcher *fsnotify.Watcher
	last    database.Signature
	primed  bool
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewPoller(dir string, interval time.Duration, sign SignatureFunc, onChange func(database.Signature), log *zap.Logger) *Poller {
	if log == nil {
		log = zap.NewNop()
	}
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &Poller{
		dir:      dir,
		interval: interval,
		sign:     sign,
		onChange: onChange,
		log:      log,
	}
}

// Start запоминает текущий отпечаток и запускает цикл в отдельной горутине.
// Если fsnotify недоступен, остаётся только опрос по таймеру.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	if sig, err := p.sign(ctx); err == nil {
		p.mu.Lock()
		p.last, p.primed = sig, true
		p.mu.Unlock()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		p.log.Warn("fsnotify unavailable, polling only", zap.Error(err))
	} else if err := w.Add(p.dir); err != nil {
		p.log.Warn("watch base dir", zap.String("dir", p.dir), zap.Error(err))
		_ = w.Close()
	} else {
		p.watcher = w
	}

	go p.run(ctx)
	return nil
}

// Stop останавливает цикл и дожидается его завершения.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopCh)
	<-p.doneCh

	if p.watcher != nil {
		if err := p.watcher.Close(); err != nil {
			p.log.Warn("close watcher", zap.Error(err))
		}
		p.watcher = nil
	}
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if p.watcher != nil {
		events, errs = p.watcher.Events, p.watcher.Errors
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.Check(ctx)
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if isStoreWrite(ev) {
				p.Check(ctx)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			p.log.Warn("watcher error", zap.Error(err))
		}
	}
}

func isStoreWrite(ev fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(ev.Name), ".db") {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create) != 0
}

// Check сравнивает отпечаток с последним известным; true — если он изменился.
func (p *Poller) Check(ctx context.Context) bool {
	sig, err := p.sign(ctx)
	if err != nil {
		p.log.Debug("signature", zap.Error(err))
		return false
	}
	p.mu.Lock()
	changed := !p.primed || sig != p.last
	p.last, p.primed = sig, true
	p.mu.Unlock()

	if changed && p.onChange != nil {
		p.onChange(sig)
	}
	return changed
}

// Last — последний известный отпечаток.
func (p *Poller) Last() database.Signature {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
