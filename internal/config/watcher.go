package config

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/deskdial/deskdial/internal/logging"
)

// debounce window for editors that write config files in several events.
const reloadDelay = 250 * time.Millisecond

// Watch monitors a config file and invokes onChange with the freshly loaded
// config after each modification. It returns once ctx is cancelled. Errors
// reloading a broken file are logged and the previous config stays active.
func Watch(ctx context.Context, path string, onChange func(Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		return err
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDelay, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logging.Warnf("config watcher: %v", err)
		case <-fire:
			c, err := Load(path)
			if err != nil {
				logging.Warnf("config reload failed, keeping previous: %v", err)
				continue
			}
			onChange(c)
		}
	}
}
