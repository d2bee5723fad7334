package v1

import (
	"net/http"
	"strconv"

	"github.com/zintix-labs/slotquest/admin"
	"github.com/zintix-labs/slotquest/errs"
	"github.com/zintix-labs/slotquest/model"
	"github.com/zintix-labs/slotquest/server/httperr"
)

type ProviderHandler struct {
	ed *admin.Editor
}

func NewProviderHandler(ed *admin.Editor) *ProviderHandler {
	return &ProviderHandler{ed: ed}
}

type providerView struct {
	ID       int                    `json:"id"`
	Name     string                 `json:"name"`
	Curated  bool                   `json:"curated"`
	Defaults model.ProviderDefaults `json:"defaults"`
}

type providerList struct {
	Providers []providerView `json:"providers"`
	Priority  []string       `json:"priority"`
	Rest      []string       `json:"rest"`
	Big3      []string       `json:"big3"`
}

// List 回傳 provider 與其預設值，以及開場選單的分組。
func (h *ProviderHandler) List(w http.ResponseWriter, r *http.Request) {
	tb := h.ed.Registry().Table()
	ps := h.ed.Providers()
	names := h.ed.ProviderNames()
	out := providerList{Providers: make([]providerView, 0, len(ps))}
	for _, p := range ps {
		d, _ := h.ed.ProviderDefaults(p.Name)
		out.Providers = append(out.Providers, providerView{
			ID:       p.ID,
			Name:     p.Name,
			Curated:  tb.Curated(p.Name),
			Defaults: d,
		})
	}
	out.Priority, out.Rest = tb.Grouped(names)
	out.Big3 = tb.SelectBig3(names)
	httperr.OK(w, http.StatusOK, "", out)
}

func (h *ProviderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decode(w, r, &req); err != nil {
		httperr.Errs(w, err)
		return
	}
	st := h.ed.AddProvider(req.Name)
	if !st.OK() {
		httperr.Errs(w, st.Err)
		return
	}
	httperr.OK(w, http.StatusCreated, st.Message, nil)
}

func (h *ProviderHandler) AddBetLevel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value float64 `json:"value"`
	}
	if err := decode(w, r, &req); err != nil {
		httperr.Errs(w, err)
		return
	}
	name := pathParam(r, "name")
	st := h.ed.AddProviderBetLevel(name, req.Value)
	d, _ := h.ed.ProviderDefaults(name)
	reply(w, st, d)
}

// RemoveBetLevel 以 ?value= 指定要移除的階梯，不存在時為 no-op。
func (h *ProviderHandler) RemoveBetLevel(w http.ResponseWriter, r *http.Request) {
	v, err := strconv.ParseFloat(r.URL.Query().Get("value"), 64)
	if err != nil {
		httperr.Errs(w, errs.Validation("Please enter a valid bet amount"))
		return
	}
	name := pathParam(r, "name")
	st := h.ed.RemoveProviderBetLevel(name, v)
	d, _ := h.ed.ProviderDefaults(name)
	reply(w, st, d)
}

func (h *ProviderHandler) SetFeatureSpins(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled    bool `json:"enabled"`
		Multiplier int  `json:"multiplier"`
	}
	if err := decode(w, r, &req); err != nil {
		httperr.Errs(w, err)
		return
	}
	name := pathParam(r, "name")
	st := h.ed.SetProviderFeatureSpins(name, req.Enabled, req.Multiplier)
	d, _ := h.ed.ProviderDefaults(name)
	reply(w, st, d)
}
