/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

// appContext holds the process-wide collaborators the consoles need. It is
// built once at startup and closed on exit.
type appContext struct {
	cfg     *Config
	prefs   *Prefs
	catalog *Catalog
	decoys  *DecoyClient
}

func newAppContext(cfg *Config) (*appContext, error) {
	prefs, err := openPrefs(cfg.prefsPath)
	if err != nil {
		return nil, err
	}

	if cfg.lang != "" {
		l, err := parseLanguage(cfg.lang)
		if err != nil {
			return nil, err
		}
		prefs.SetLanguage(l)
	}

	return &appContext{
		cfg:     cfg,
		prefs:   prefs,
		catalog: defaultCatalog(),
		decoys:  newDecoyClient(cfg),
	}, nil
}

func (a *appContext) Language() Language {
	return a.prefs.Language()
}

func (a *appContext) Close() error {
	return a.prefs.Close()
}
