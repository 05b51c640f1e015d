package cli

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/devfeed/internal/client/settings"
)

// Files lists the uploaded files announced so far.
func (a *App) Files(context.Context) error {
	items := a.inbox.Items()
	if len(items) == 0 {
		a.println("No files yet")
		return nil
	}
	for _, it := range items {
		a.printf("%s  %-5s  %s\n", it.CreatedAt.Local().Format(time.DateTime), it.FileType, it.URL)
	}
	return nil
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func (a *App) Settings(context.Context) error {
	prefs := a.settings.Get().Map()
	for _, name := range settings.Names() {
		a.printf("%-20s %s\n", name, onOff(prefs[name]))
	}
	return nil
}

func (a *App) Toggle(ctx context.Context, name string) error {
	prefs, err := a.settings.Toggle(ctx, name)
	if err != nil {
		if errors.Is(err, settings.ErrUnknownPreference) {
			a.println("Unknown preference:", name)
		} else {
			a.showError(err)
		}
		return err
	}
	a.printf("%s is now %s\n", name, onOff(prefs.Map()[name]))
	return nil
}
