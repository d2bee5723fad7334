package v1

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/zintix-labs/slotquest/admin"
	"github.com/zintix-labs/slotquest/model"
	"github.com/zintix-labs/slotquest/server/httperr"
	"github.com/zintix-labs/slotquest/server/metrics"
)

const saveTimeout = 10 * time.Second

type SlotHandler struct {
	ed  *admin.Editor
	met *metrics.Metrics
}

func NewSlotHandler(ed *admin.Editor, met *metrics.Metrics) *SlotHandler {
	return &SlotHandler{ed: ed, met: met}
}

type slotView struct {
	model.SlotGame
	ID                 int       `json:"id"`
	EffectiveBetLevels []float64 `json:"effective_bet_levels"`
}

// MarshalJSON 以 SlotGame 自己的編碼（含未建模欄位）為底，再補上 id 與實際下注階梯。
// 內嵌的 SlotGame 帶有 MarshalJSON，不自訂的話外層欄位會被它吃掉。
func (v slotView) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(v.SlotGame)
	if err != nil {
		return nil, err
	}
	levels, err := json.Marshal(v.EffectiveBetLevels)
	if err != nil {
		return nil, err
	}
	out := raw[:len(raw)-1:len(raw)-1]
	return fmt.Appendf(out, `,"id":%d,"effective_bet_levels":%s}`, v.ID, levels), nil
}

func (h *SlotHandler) view(g model.SlotGame) slotView {
	return slotView{SlotGame: g, ID: g.ID, EffectiveBetLevels: h.ed.EffectiveBetLevels(g)}
}

// List 支援 ?q=（名稱或 provider，不分大小寫）與 ?provider=（完全相同）。
func (h *SlotHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	found := h.ed.Filter(q.Get("q"), q.Get("provider"))
	out := make([]slotView, len(found))
	for i, g := range found {
		out[i] = h.view(g)
	}
	httperr.OK(w, http.StatusOK, "", out)
}

func (h *SlotHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	g, ok := h.ed.Store().Get(id)
	if !ok {
		httperr.Errs(w, admin.ErrNoSlot)
		return
	}
	httperr.OK(w, http.StatusOK, "", h.view(g))
}

func (h *SlotHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, -1)
}

func (h *SlotHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	h.save(w, r, id)
}

func (h *SlotHandler) save(w http.ResponseWriter, r *http.Request, id int) {
	var in admin.SlotInput
	if err := decode(w, r, &in); err != nil {
		httperr.Errs(w, err)
		return
	}
	d, st := h.ed.Apply(id, in)
	if !st.OK() {
		httperr.Errs(w, st.Err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), saveTimeout)
	defer cancel()

	saved, st := h.ed.Save(ctx, d)
	if saved.GameName != "" {
		h.met.ObserveSave(st.Err)
	}
	if !st.OK() {
		httperr.Errs(w, st.Err)
		return
	}
	status := http.StatusOK
	if id < 0 {
		status = http.StatusCreated
	}
	httperr.OK(w, status, st.Message, h.view(saved))
}
