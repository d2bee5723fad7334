package admin

import (
	"slices"
	"strings"

	"github.com/zintix-labs/slotquest/errs"
	"github.com/zintix-labs/slotquest/model"
	"github.com/zintix-labs/slotquest/providers"
)

var (
	ErrFeatureName    = errs.Validation("Feature spin name cannot be empty")
	ErrFeatureMult    = errs.Validation("Please enter a valid multiplier")
	ErrFeatureDup     = errs.Duplicate("A feature spin with this name already exists")
	ErrBonusName      = errs.Validation("Bonus name cannot be empty")
	ErrBonusMult      = errs.Validation("Please enter a valid bonus multiplier")
	ErrBonusDup       = errs.Duplicate("A bonus with this name already exists")
	ErrFeatureSpinsLv = errs.Validation("Feature spins multiplier must be at least 1")
)

// Draft 是 slot 表單的編輯狀態。
//
// 下注階梯、feature spins、bonuses 都是一等公民的集合，存檔時直接組成 SlotGame，
// 不經過任何畫面文字來回轉換。ID < 0 代表新建。
type Draft struct {
	ID                     int
	GameName               string
	Provider               string
	GameImageURL           string
	FeatureSpins           bool
	FeatureSpinsMultiplier int

	betLevels    []float64
	featureSpins []model.FeatureSpin
	bonuses      []model.Bonus
	extra        model.RawFields

	reg *providers.Registry
}

func newDraft(reg *providers.Registry, base model.SlotGame) *Draft {
	return &Draft{
		ID:                     base.ID,
		GameName:               base.GameName,
		Provider:               base.Provider,
		GameImageURL:           base.GameImageURL,
		FeatureSpins:           base.FeatureSpins,
		FeatureSpinsMultiplier: base.FeatureSpinsMultiplier,
		betLevels:              slices.Clone(base.BetLevels),
		featureSpins:           slices.Clone(base.AdditionalFeatureSpins),
		bonuses:                slices.Clone(base.Bonuses),
		extra:                  base.Extra.Clone(),
		reg:                    reg,
	}
}

func (d *Draft) IsNew() bool { return d.ID < 0 }

func (d *Draft) BetLevels() []float64                 { return slices.Clone(d.betLevels) }
func (d *Draft) FeatureSpinList() []model.FeatureSpin { return slices.Clone(d.featureSpins) }
func (d *Draft) Bonuses() []model.Bonus               { return slices.Clone(d.bonuses) }

// SetProvider 切換 provider。新建中的 draft 會重新套用該 provider 的 feature spin 預設值；
// 已存在的 slot 以自身欄位為準。
func (d *Draft) SetProvider(name string) {
	d.Provider = strings.TrimSpace(name)
	if !d.IsNew() || d.reg == nil {
		return
	}
	p := d.reg.Prefill(d.Provider)
	d.FeatureSpins = p.FeatureSpins
	d.FeatureSpinsMultiplier = p.FeatureSpinsMultiplier
}

// workingLevels : draft 自己沒有階梯時，以 provider 預設階梯為起點。
func (d *Draft) workingLevels() []float64 {
	if len(d.betLevels) > 0 || d.reg == nil {
		return d.betLevels
	}
	if def, ok := d.reg.Get(d.Provider); ok {
		return def.BetLevels
	}
	return d.betLevels
}

func (d *Draft) AddBetLevel(v float64) Status {
	next, err := providers.InsertLevel(d.workingLevels(), v)
	if err != nil {
		return fail(err)
	}
	d.betLevels = next
	return done("Added bet level: %s", money(v))
}

// RemoveBetLevel 不存在時為 no-op，回傳空訊息的成功狀態。
func (d *Draft) RemoveBetLevel(v float64) Status {
	next, removed := providers.DeleteLevel(d.workingLevels(), v)
	if !removed {
		return Status{}
	}
	d.betLevels = next
	return done("Removed bet level: %s", money(v))
}

func (d *Draft) AddFeatureSpin(name string, multiplier int, desc string) Status {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return fail(ErrFeatureName)
	case multiplier < 1:
		return fail(ErrFeatureMult)
	}
	for _, f := range d.featureSpins {
		if f.Name == name {
			return fail(ErrFeatureDup)
		}
	}
	d.featureSpins = append(d.featureSpins, model.FeatureSpin{
		Name:        name,
		Multiplier:  multiplier,
		Description: strings.TrimSpace(desc),
	})
	return done("Added feature spin: %s (%dx)", name, multiplier)
}

func (d *Draft) RemoveFeatureSpin(name string) Status {
	i := slices.IndexFunc(d.featureSpins, func(f model.FeatureSpin) bool { return f.Name == name })
	if i < 0 {
		return Status{}
	}
	d.featureSpins = slices.Delete(d.featureSpins, i, i+1)
	return done("Removed feature spin: %s", name)
}

func (d *Draft) AddBonus(name string, multiplier int, desc string) Status {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return fail(ErrBonusName)
	case multiplier < 1:
		return fail(ErrBonusMult)
	}
	for _, b := range d.bonuses {
		if b.Name == name {
			return fail(ErrBonusDup)
		}
	}
	d.bonuses = append(d.bonuses, model.Bonus{
		Name:        name,
		Multiplier:  multiplier,
		Description: strings.TrimSpace(desc),
	})
	return done("Added bonus: %s (%dx)", name, multiplier)
}

func (d *Draft) RemoveBonus(name string) Status {
	i := slices.IndexFunc(d.bonuses, func(b model.Bonus) bool { return b.Name == name })
	if i < 0 {
		return Status{}
	}
	d.bonuses = slices.Delete(d.bonuses, i, i+1)
	return done("Removed bonus: %s", name)
}

// validate 的檢查順序與表單送出時一致：feature spin 倍數、名稱、provider。
func (d *Draft) validate() error {
	if d.FeatureSpins && d.FeatureSpinsMultiplier < 1 {
		return ErrFeatureSpinsLv
	}
	if strings.TrimSpace(d.GameName) == "" {
		return errs.Validation("Slot name cannot be empty")
	}
	if strings.TrimSpace(d.Provider) == "" {
		return errs.Validation("Provider cannot be empty")
	}
	return nil
}

// Record 組出完整的 SlotGame。
func (d *Draft) Record() model.SlotGame {
	mult := d.FeatureSpinsMultiplier
	if mult < 1 {
		mult = 1
	}
	return model.SlotGame{
		ID:                     d.ID,
		GameName:               strings.TrimSpace(d.GameName),
		Provider:               strings.TrimSpace(d.Provider),
		GameImageURL:           strings.TrimSpace(d.GameImageURL),
		BetLevels:              slices.Clone(d.betLevels),
		FeatureSpins:           d.FeatureSpins,
		FeatureSpinsMultiplier: mult,
		AdditionalFeatureSpins: slices.Clone(d.featureSpins),
		Bonuses:                slices.Clone(d.bonuses),
		Extra:                  d.extra.Clone(),
	}
}
