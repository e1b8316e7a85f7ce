// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package i18n resolves user-facing message keys against embedded locale
// catalogs. Unknown keys translate to themselves so a missing entry is
// visible rather than fatal.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed locales/*.json
var localeFS embed.FS

const fallbackLang = "en"

// Catalog translates message keys for one language, falling back to
// English for keys the language does not cover.
type Catalog struct {
	lang     string
	messages map[string]string
	fallback map[string]string
}

// Load builds a catalog for the given language tag. Unknown languages get
// the English catalog.
func Load(lang string) (*Catalog, error) {
	fallback, err := readLocale(fallbackLang)
	if err != nil {
		return nil, err
	}
	c := &Catalog{lang: lang, messages: fallback, fallback: fallback}
	if lang == fallbackLang {
		return c, nil
	}
	if messages, err := readLocale(lang); err == nil {
		c.messages = messages
	} else {
		c.lang = fallbackLang
	}
	return c, nil
}

func readLocale(lang string) (map[string]string, error) {
	data, err := localeFS.ReadFile("locales/" + lang + ".json")
	if err != nil {
		return nil, fmt.Errorf("locale %s: %w", lang, err)
	}
	var messages map[string]string
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("locale %s: %w", lang, err)
	}
	return messages, nil
}

// Lang returns the language the catalog resolved to.
func (c *Catalog) Lang() string {
	return c.lang
}

// Translate resolves a key and interpolates {{name}} placeholders from
// params. A key absent from every catalog comes back unchanged.
func (c *Catalog) Translate(key string, params map[string]any) string {
	msg, ok := c.messages[key]
	if !ok {
		msg, ok = c.fallback[key]
	}
	if !ok {
		return key
	}
	for name, value := range params {
		msg = strings.ReplaceAll(msg, "{{"+name+"}}", fmt.Sprint(value))
	}
	return msg
}
