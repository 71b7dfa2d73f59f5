package config

import (
	"context"
	"fmt"

	"github.com/knadh/koanf/providers/file"
)

// Watch reloads the config file whenever it changes and hands the fresh
// Config to onChange. Reload errors go to onError. Watching stops when ctx
// is done. A Config without a file source returns immediately.
func Watch(ctx context.Context, c *Config, onChange func(*Config), onError func(error)) error {
	if c.source == "" {
		return nil
	}
	fp := file.Provider(c.source)
	err := fp.Watch(func(_ interface{}, werr error) {
		if werr != nil {
			onError(fmt.Errorf("%w: watch: %w", ErrLoadConfig, werr))
			return
		}
		next, lerr := LoadFile(ctx, c.source)
		if lerr != nil {
			onError(lerr)
			return
		}
		onChange(next)
	})
	if err != nil {
		return fmt.Errorf("%w: watch %s: %w", ErrLoadConfig, c.source, err)
	}
	go func() {
		<-ctx.Done()
		_ = fp.Unwatch()
	}()
	return nil
}
