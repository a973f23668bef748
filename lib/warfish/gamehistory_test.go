package warfish

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func historyPageHTML(total int, rows []string) string {
	var b strings.Builder
	b.WriteString("<html><body><center><center>")
	fmt.Fprintf(&b, "%d total moves", total)
	b.WriteString("</center></center><table><tr><td><table><tr><td><div>")
	for _, row := range rows {
		b.WriteString(row)
	}
	b.WriteString("</div></td></tr></table></td></tr></table></body></html>")
	return b.String()
}

func histRowMilli(second int) int64 {
	return time.Date(2020, 1, 2, 3, 4, second, 0, time.UTC).UnixMilli()
}

func TestRawHistoryDecodesRowVariants(t *testing.T) {
	rows := []string{
		`<nobr>101 01/02 03:04:05 <a href="/profile?seat=0">alice</a> <b>places</b> 3 units on Alpha</nobr>`,
		`<nobr>102 01/02 03:04:06 <a href="/profile?seat=0">alice</a> <b>attacks</b> <a href="/profile?seat=1">bob</a> on Beta (3 vs 2)</nobr>`,
		`<nobr>103 01/02 03:04:07 <a href="/profile?seat=1">bob</a> <b>attacks</b> Neutral on Gamma</nobr>`,
		`<nobr>104 01/02 03:04:08 --- fog ---</nobr>`,
		`<nobr>105 01/02 03:04:09 Game is started</nobr>`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/play/gamehistory", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "7", r.URL.Query().Get("gid"))
		w.Write([]byte(historyPageHTML(len(rows), rows)))
	})
	client := newTestClient(t, mux)

	var progressCalls [][2]int
	decoded, err := client.RawHistory(context.Background(), 7, func(done, total int) {
		progressCalls = append(progressCalls, [2]int{done, total})
	})
	require.NoError(t, err)
	require.Len(t, decoded, 5)

	place := decoded[0]
	require.Equal(t, 101, place.HistoryID)
	require.Equal(t, histRowMilli(5), place.TS)
	require.Equal(t, "alice", place.Player)
	require.Equal(t, intPtr(0), place.SeatID)
	require.Equal(t, "places", place.Action)
	require.Empty(t, place.Opponent)
	require.Equal(t, " 3 units on Alpha", place.Rest)

	attack := decoded[1]
	require.Equal(t, "attacks", attack.Action)
	require.Equal(t, "bob", attack.Opponent)
	require.Equal(t, intPtr(1), attack.OpponentSeatID)
	require.Equal(t, " on Beta (3 vs 2)", attack.Rest)

	neutral := decoded[2]
	require.Equal(t, "Neutral", neutral.Opponent)
	require.Equal(t, intPtr(-1), neutral.OpponentSeatID)
	require.Equal(t, "on Gamma", neutral.Rest)

	// fog and system rows carry the id and timestamp only
	for _, row := range decoded[3:] {
		require.Empty(t, row.Player)
		require.Nil(t, row.SeatID)
		require.Empty(t, row.Action)
		require.Empty(t, row.Rest)
	}
	require.Equal(t, 104, decoded[3].HistoryID)
	require.Equal(t, histRowMilli(8), decoded[3].TS)

	// one call per row plus the final (total, total)
	require.Equal(t, [][2]int{
		{0, 5}, {1, 5}, {2, 5}, {3, 5}, {4, 5}, {5, 5},
	}, progressCalls)
}

func TestRawHistoryPaginatesUntilShortPage(t *testing.T) {
	const total = 30

	var starts []int
	mux := http.NewServeMux()
	mux.HandleFunc("/play/gamehistory", func(w http.ResponseWriter, r *http.Request) {
		start, err := strconv.Atoi(r.URL.Query().Get("start"))
		require.NoError(t, err)
		end, err := strconv.Atoi(r.URL.Query().Get("end"))
		require.NoError(t, err)
		require.Equal(t, start+interactiveHistoryPageSize, end)
		starts = append(starts, start)

		var rows []string
		for i := start; i < end && i < total; i++ {
			rows = append(rows, fmt.Sprintf(`<nobr>%d 01/02 03:04:05 --- fog ---</nobr>`, 200+i))
		}
		w.Write([]byte(historyPageHTML(total, rows)))
	})
	client := newTestClient(t, mux)

	var last [2]int
	decoded, err := client.RawHistory(context.Background(), 7, func(done, total int) {
		last = [2]int{done, total}
	})
	require.NoError(t, err)

	require.Equal(t, []int{0, 25}, starts)
	require.Len(t, decoded, total)
	for i, row := range decoded {
		require.Equal(t, 200+i, row.HistoryID)
	}
	require.Equal(t, [2]int{total, total}, last)
}

func TestRawHistoryRejectsMissingCounter(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/play/gamehistory", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><table></table></body></html>`))
	})
	client := newTestClient(t, mux)

	_, err := client.RawHistory(context.Background(), 7, nil)
	require.ErrorIs(t, err, ErrUnexpectedShape)
}
