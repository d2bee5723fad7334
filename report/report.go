// Copyright 2025 Zintix Labs
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

// Package report 把 session 的狀態畫成終端機文字：房間資訊、血條、結算表。
package report

import (
	"fmt"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/slotquest/session"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang = language.English

const barTemplate = `{{bar . "[" "#" "#" "." "]"}}`

// Money 以 $1,234.56 格式輸出，負數為 -$20.00。
func Money(d decimal.Decimal) string {
	p := message.NewPrinter(lang)
	if d.IsNegative() {
		return p.Sprintf("-$%.2f", d.Neg().InexactFloat64())
	}
	return p.Sprintf("$%.2f", d.InexactFloat64())
}

// Signed 與 Money 相同，但正數帶 + 號。
func Signed(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + Money(d)
	}
	return Money(d)
}

// HealthBar 以 pb 畫出 width 寬的血條，後面接百分比；超過 100% 時條滿格。
func HealthBar(percent float64, width int) string {
	const total = 1000
	cur := int64(percent * total / 100)
	cur = max(0, min(total, cur))
	bar := pb.ProgressBarTemplate(barTemplate).New(total)
	bar.SetWidth(width)
	bar.SetCurrent(cur)
	return fmt.Sprintf("%s %.0f%%", strings.TrimSpace(bar.String()), percent)
}

// Room 是進入房間時顯示的資訊卡。
func Room(snap session.Snapshot) string {
	keys := []string{"Room", "Slot", "Provider", "Gold", "Buy Range", "Suggested"}
	msg := map[string]string{
		"Room":      fmt.Sprintf("%d / %d", snap.CurrentRoom, snap.NumRooms),
		"Gold":      Money(snap.CurrentGold),
		"Buy Range": Money(snap.MinBuy) + " - " + Money(snap.MaxBuy),
		"Suggested": Money(snap.Suggested),
	}
	if snap.CurrentSlot != nil {
		msg["Slot"] = snap.CurrentSlot.GameName
		msg["Provider"] = snap.CurrentSlot.Provider
	}
	return fmtTable("SlotQuest", keys, msg) + HealthBar(snap.HealthPercent, 30) + "\n"
}

// Outcome 是最後一房結束後的結算表，包含逐房紀錄。
func Outcome(snap session.Snapshot) string {
	keys := []string{"Starting Gold", "Final Gold", "Profit / Loss", "Rooms", "Best Room", "Worst Room"}
	msg := map[string]string{
		"Starting Gold": Money(snap.InitialGold),
		"Final Gold":    Money(snap.CurrentGold),
		"Profit / Loss": Signed(snap.ProfitLoss),
		"Rooms":         fmt.Sprintf("%d", len(snap.History)),
		"Best Room":     highlight(snap.Best),
		"Worst Room":    highlight(snap.Worst),
	}
	return fmtTable("Quest Complete", keys, msg) + History(snap.History)
}

// History 逐房列出 slot、下注、結果與損益。
func History(rows []session.RoomResult) string {
	head := []string{"#", "Slot", "Provider", "Buy", "Result", "P/L"}
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []string{
			fmt.Sprintf("%d", r.RoomNumber),
			r.SlotName,
			r.Provider,
			Money(r.BuyAmount),
			Money(r.ResultAmount),
			Signed(r.ProfitLoss),
		})
	}
	return fmtGrid(head, cells)
}

func highlight(h session.Highlight) string {
	if h.Name == session.NoneName {
		return session.NoneName
	}
	return h.Name + " (" + Signed(h.Amount) + ")"
}

// ============================================================
// ** 內部方法 **
// ============================================================

func fmtTable(title string, keys []string, msg map[string]string) string {
	maxKeyLen := 0
	maxValLen := 0
	for _, k := range keys {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(msg[k]); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	// 標題比內容寬時把值欄撐開
	if titleW := runewidth.StringWidth(title); titleW > maxKeyLen+maxValLen+1 {
		maxValLen = titleW - maxKeyLen - 1
	}

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)
	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var sb strings.Builder
	sb.WriteString(top)
	sb.WriteString("|" + blank(left) + title + blank(right) + "|\n")
	sb.WriteString(divider)
	for _, k := range keys {
		sb.WriteString("| " + pad(k, maxKeyLen-2) + " | " + pad(msg[k], maxValLen-2) + " |\n")
	}
	sb.WriteString(divider)
	return sb.String()
}

func fmtGrid(head []string, rows [][]string) string {
	widths := make([]int, len(head))
	for i, h := range head {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i, c := range r {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}

	var sb strings.Builder
	divider := "+"
	for _, w := range widths {
		divider += strings.Repeat("-", w+2) + "+"
	}
	divider += "\n"
	line := func(cells []string) {
		sb.WriteString("|")
		for i, c := range cells {
			sb.WriteString(" " + pad(c, widths[i]) + " |")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(divider)
	line(head)
	sb.WriteString(divider)
	for _, r := range rows {
		line(r)
	}
	sb.WriteString(divider)
	return sb.String()
}

// pad 以顯示寬度補空白（CJK 字元佔兩格）。
func pad(s string, w int) string {
	return s + blank(w-runewidth.StringWidth(s))
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
