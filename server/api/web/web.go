// Package web 提供前端靜態檔，以及資料集檔案本身的讀取與整份覆寫端點。
package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/zintix-labs/slotquest/admin"
	"github.com/zintix-labs/slotquest/dataset"
	"github.com/zintix-labs/slotquest/server/httperr"
	"github.com/zintix-labs/slotquest/server/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const saveTimeout = 10 * time.Second

type DatasetHandler struct {
	ed      *admin.Editor
	met     *metrics.Metrics
	maxBody int64
}

func NewDatasetHandler(ed *admin.Editor, met *metrics.Metrics, maxBody int64) *DatasetHandler {
	return &DatasetHandler{ed: ed, met: met, maxBody: maxBody}
}

// Get 回傳目前的資料集，形狀與檔案相同。
func (h *DatasetHandler) Get(w http.ResponseWriter, r *http.Request) {
	raw, err := dataset.Encode(h.ed.Store().Slots())
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(raw)
}

// Save 整份覆寫資料集。
//
//	body 超過上限          -> 413 Payload too large
//	不是 JSON              -> 400 Invalid JSON
//	不是 [ {slot_games:[]} ] -> 400 Invalid data structure
//	寫入失敗               -> 500 Error saving file
func (h *DatasetHandler) Save(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			httperr.Fail(w, http.StatusRequestEntityTooLarge, "Payload too large")
			return
		}
		httperr.Fail(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if !json.Valid(raw) {
		httperr.Fail(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if _, err := dataset.Decode(raw); err != nil {
		httperr.Fail(w, http.StatusBadRequest, "Invalid data structure")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), saveTimeout)
	defer cancel()
	st := h.ed.Overwrite(ctx, raw)
	h.met.ObserveSave(st.Err)
	if !st.OK() {
		httperr.Fail(w, http.StatusInternalServerError, "Error saving file")
		return
	}
	httperr.OK(w, http.StatusOK, st.Message, nil)
}

// Static 以 root 目錄提供靜態檔，"/" 對應 index.html。
func Static(root string) http.Handler {
	return http.FileServer(http.Dir(root))
}
