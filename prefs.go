/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const prefLanguageKey = "language"

// Prefs is the small on-disk preference store. Changes are written when
// it is closed.
type Prefs struct {
	v     *viper.Viper
	path  string
	dirty bool
}

func openPrefs(path string) (*Prefs, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetDefault(prefLanguageKey, string(LangEnglish))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading preferences %s: %w", path, err)
		}
	}

	return &Prefs{v: v, path: path}, nil
}

// Language returns the saved language, English when unset or unknown.
func (p *Prefs) Language() Language {
	l, err := parseLanguage(p.v.GetString(prefLanguageKey))
	if err != nil {
		return LangEnglish
	}

	return l
}

func (p *Prefs) SetLanguage(l Language) {
	if p.Language() == l && p.v.InConfig(prefLanguageKey) {
		return
	}

	p.v.Set(prefLanguageKey, string(l))
	p.dirty = true
}

func (p *Prefs) Close() error {
	if !p.dirty {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}

	if err := p.v.WriteConfigAs(p.path); err != nil {
		return fmt.Errorf("writing preferences %s: %w", p.path, err)
	}
	p.dirty = false

	return nil
}
