package v1

import (
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/slotquest/admin"
	"github.com/zintix-labs/slotquest/errs"
	"github.com/zintix-labs/slotquest/server/httperr"
	"github.com/zintix-labs/slotquest/session"
)

type SessionHandler struct {
	ed *admin.Editor
	m  *session.Manager
}

func NewSessionHandler(ed *admin.Editor, m *session.Manager) *SessionHandler {
	return &SessionHandler{ed: ed, m: m}
}

type createSessionReq struct {
	session.Config
	// Big3 為 true 時忽略 providers，改用 Big 3 中實際存在的 provider。
	Big3 bool `json:"big3"`
}

// amountReq 的 amount 必填；缺漏或 null 與無法解析的數字同樣拒絕，不會被當成 0。
type amountReq struct {
	Amount decimal.NullDecimal `json:"amount"`
}

var (
	errNoStake  = errs.Validation("Please enter a valid buy amount")
	errNoResult = errs.Validation("Please enter a valid result amount")
)

func readAmount(w http.ResponseWriter, r *http.Request, missing error) (decimal.Decimal, error) {
	var req amountReq
	if err := decode(w, r, &req); err != nil {
		return decimal.Zero, err
	}
	if !req.Amount.Valid {
		return decimal.Zero, missing
	}
	return req.Amount.Decimal, nil
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionReq
	if err := decode(w, r, &req); err != nil {
		httperr.Errs(w, err)
		return
	}
	cfg := req.Config
	if req.Big3 {
		cfg.Providers = h.ed.Registry().Table().SelectBig3(h.ed.Store().Providers())
	}
	snap, err := h.m.Create(cfg)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	httperr.OK(w, http.StatusCreated, "", snap)
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.m.Get(pathParam(r, "id"))
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	httperr.OK(w, http.StatusOK, "", snap)
}

func (h *SessionHandler) Reroll(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, func(s *session.Session) error { return s.Reroll() })
}

func (h *SessionHandler) Stake(w http.ResponseWriter, r *http.Request) {
	amount, err := readAmount(w, r, errNoStake)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	h.update(w, r, func(s *session.Session) error { return s.PlaceStake(amount) })
}

func (h *SessionHandler) Result(w http.ResponseWriter, r *http.Request) {
	amount, err := readAmount(w, r, errNoResult)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	h.update(w, r, func(s *session.Session) error {
		_, err := s.SubmitResult(amount)
		return err
	})
}

func (h *SessionHandler) Restart(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, func(s *session.Session) error { return s.Restart() })
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.m.Delete(pathParam(r, "id")); err != nil {
		httperr.Errs(w, err)
		return
	}
	httperr.OK(w, http.StatusOK, "", nil)
}

func (h *SessionHandler) update(w http.ResponseWriter, r *http.Request, fn func(s *session.Session) error) {
	snap, err := h.m.Update(pathParam(r, "id"), fn)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	httperr.OK(w, http.StatusOK, "", snap)
}
