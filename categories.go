/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Language is one of the supported UI languages.
type Language string

const (
	LangEnglish    Language = "en"
	LangPortuguese Language = "pt"
	LangSpanish    Language = "es"
)

var languages = []Language{LangEnglish, LangPortuguese, LangSpanish}

func parseLanguage(s string) (Language, error) {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range languages {
		if l == known {
			return l, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
}

//go:embed data/categories.json
var categoriesJSON []byte

type Translation struct {
	Name  string   `json:"name"`
	Words []string `json:"words"`
}

type Category struct {
	ID           string                   `json:"id"`
	Icon         string                   `json:"icon"`
	Translations map[Language]Translation `json:"translations"`
}

// Catalog is the static list of word categories.
type Catalog struct {
	categories []Category
}

func loadCatalog(data []byte) (*Catalog, error) {
	var categories []Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("parsing categories: %w", err)
	}

	if len(categories) == 0 {
		return nil, errors.New("category catalog is empty")
	}

	for _, c := range categories {
		t, ok := c.Translations[LangEnglish]
		if !ok || len(t.Words) == 0 {
			return nil, fmt.Errorf("category %q has no english words", c.ID)
		}
	}

	return &Catalog{categories: categories}, nil
}

func defaultCatalog() *Catalog {
	c, err := loadCatalog(categoriesJSON)
	if err != nil {
		panic("embedded categories: " + err.Error())
	}

	return c
}

func (c *Catalog) Categories() []Category {
	return c.categories
}

// Resolve returns the display name and word pool of category id in lang.
// Unknown ids fall back to the first category, unknown or missing
// languages to English.
func (c *Catalog) Resolve(id string, lang Language) (string, []string) {
	category := c.categories[0]
	for _, candidate := range c.categories {
		if candidate.ID == id {
			category = candidate
			break
		}
	}

	t, ok := category.Translations[lang]
	if !ok || len(t.Words) == 0 {
		t = category.Translations[LangEnglish]
	}

	return t.Name, t.Words
}
