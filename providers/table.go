package providers

import (
	"bytes"
	_ "embed"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/zintix-labs/slotquest/errs"
	"github.com/zintix-labs/slotquest/model"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var builtinYAML []byte

// Row 是種子表中的一列。
type Row struct {
	Name                   string    `yaml:"name"`
	BetLevels              []float64 `yaml:"bet_levels"`
	FeatureSpins           bool      `yaml:"feature_spins"`
	FeatureSpinsMultiplier int       `yaml:"feature_spins_multiplier"`
}

// Table 是 provider 預設值的宣告式種子表。
type Table struct {
	Generic   model.ProviderDefaults `yaml:"generic"`
	Providers []Row                  `yaml:"providers"`
	Priority  []string               `yaml:"priority"`
	Big3      []string               `yaml:"big3"`

	rows map[string]model.ProviderDefaults
}

// Builtin 回傳內建種子表。內建表由 go:embed 帶入，解析失敗屬於建置錯誤。
func Builtin() *Table {
	t, err := ParseTable(builtinYAML)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTable 嚴格解析 YAML：多寫/拼錯欄位就報錯。
func ParseTable(raw []byte) (*Table, error) {
	t := new(Table)
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(t); err != nil {
		return nil, errs.Load("providers table: decode failed", err)
	}
	if err := t.init(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) init() error {
	levels, err := NormalizeLevels(t.Generic.BetLevels)
	if err != nil {
		return errs.Wrap(err, "providers table: generic bet levels")
	}
	t.Generic.BetLevels = levels
	t.Generic.FeatureSpinsMultiplier = max(1, t.Generic.FeatureSpinsMultiplier)

	t.rows = make(map[string]model.ProviderDefaults, len(t.Providers))
	for _, r := range t.Providers {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return errs.Load("providers table: empty provider name", nil)
		}
		if _, ok := t.rows[name]; ok {
			return errs.Load(fmt.Sprintf("providers table: duplicate provider %q", name), nil)
		}
		if r.FeatureSpins && r.FeatureSpinsMultiplier < 1 {
			return errs.Load(fmt.Sprintf("providers table: %s feature_spins_multiplier must be at least 1", name), nil)
		}
		levels, err := NormalizeLevels(r.BetLevels)
		if err != nil {
			return errs.Wrap(err, fmt.Sprintf("providers table: %s bet levels", name))
		}
		t.rows[name] = model.ProviderDefaults{
			BetLevels:              levels,
			FeatureSpins:           r.FeatureSpins,
			FeatureSpinsMultiplier: max(1, r.FeatureSpinsMultiplier),
		}
	}
	return nil
}

// DefaultsFor 回傳某 provider 第一次出現時應使用的預設值。
func (t *Table) DefaultsFor(name string) model.ProviderDefaults {
	if d, ok := t.rows[name]; ok {
		return d.Clone()
	}
	return t.Generic.Clone()
}

// Curated 回傳是否為表內特別列出的 provider。
func (t *Table) Curated(name string) bool {
	_, ok := t.rows[name]
	return ok
}

// Grouped 依開場選單的排列：priority 中存在於 names 的依表內順序置頂，
// 其餘依字母排序接在後面。
func (t *Table) Grouped(names []string) (priority []string, rest []string) {
	for _, p := range t.Priority {
		if slices.Contains(names, p) {
			priority = append(priority, p)
		}
	}
	for _, n := range names {
		if !slices.Contains(t.Priority, n) {
			rest = append(rest, n)
		}
	}
	sort.Strings(rest)
	return priority, rest
}

// SelectBig3 回傳 Big 3 中實際存在於 names 的 provider。
func (t *Table) SelectBig3(names []string) []string {
	out := make([]string, 0, len(t.Big3))
	for _, p := range t.Big3 {
		if slices.Contains(names, p) {
			out = append(out, p)
		}
	}
	return out
}
