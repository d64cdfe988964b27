package importer

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/ledgr/internal/category"
	"github.com/cleared-dev/ledgr/internal/model"
)

// RulesFile is the categorization rules file inside a workspace.
const RulesFile = "rules.yaml"

// Rule assigns a category to transactions whose description contains Match
// (case-insensitive).
type Rule struct {
	Match    string `yaml:"match"`
	Category string `yaml:"category"`
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads categorization rules. A missing file means no rules.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	return f.Rules, nil
}

// SaveRules writes rules to path.
func SaveRules(path string, rules []Rule) error {
	data, err := yaml.Marshal(rulesFile{Rules: rules})
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return nil
}

// Options controls how transactions become entries.
type Options struct {
	AccountID string
	Currency  string
	// Fallback is the category for transactions no rule matches.
	Fallback string
	Rules    []Rule
}

// Convert builds one entry per transaction. Categories are interned in reg;
// the first matching rule wins.
func Convert(reg *category.Registry, txns []Transaction, opts Options) ([]*model.Entry, error) {
	fallback := opts.Fallback
	if fallback == "" {
		fallback = "Uncategorized"
	}

	cache := make(map[string]*category.Category)
	resolve := func(path string) (*category.Category, error) {
		if c, ok := cache[path]; ok {
			return c, nil
		}
		c, err := reg.Parse(path)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", path, err)
		}
		cache[path] = c
		return c, nil
	}

	entries := make([]*model.Entry, 0, len(txns))
	for _, txn := range txns {
		c, err := resolve(categorize(txn.Description, opts.Rules, fallback))
		if err != nil {
			return nil, err
		}
		entries = append(entries, model.NewEntry(model.EntryParams{
			Name:           txn.Description,
			Value:          txn.Amount,
			Currency:       opts.Currency,
			Date:           txn.Date,
			Category:       c,
			AccountID:      opts.AccountID,
			AdditionalInfo: txn.Reference,
		}))
	}
	return entries, nil
}

func categorize(desc string, rules []Rule, fallback string) string {
	lower := strings.ToLower(desc)
	for _, r := range rules {
		if r.Match != "" && strings.Contains(lower, strings.ToLower(r.Match)) {
			return r.Category
		}
	}
	return fallback
}

// SkipKnown drops incoming entries that are already in the journal, so
// re-importing a statement adds nothing twice. Entries match on reference,
// account, description and amount. Occurrences are counted: a row repeated
// n times in a file is skipped only as often as the journal already holds it.
func SkipKnown(existing, incoming []*model.Entry) []*model.Entry {
	known := make(map[string]int, len(existing))
	for _, e := range existing {
		if e.AdditionalInfo() != "" {
			known[dedupKey(e)]++
		}
	}
	var out []*model.Entry
	for _, e := range incoming {
		if e.AdditionalInfo() != "" {
			k := dedupKey(e)
			if known[k] > 0 {
				known[k]--
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

func dedupKey(e *model.Entry) string {
	return strings.Join([]string{e.AdditionalInfo(), e.AccountID(), e.Name(), e.Value().String()}, "\x00")
}
