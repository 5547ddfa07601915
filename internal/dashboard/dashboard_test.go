package dashboard

import (
	"strings"
	"testing"

	"github.com/ifaraag/2019-VSCode4Teaching/pkg/domain"
)

func TestRows(t *testing.T) {
	euis := []domain.ExerciseUserInfo{
		{User: domain.User{Name: "Ann", LastName: "Lee", Username: "ann"}, Finished: true},
		{User: domain.User{Name: "Bob", LastName: "Ray", Username: "bob"}, Finished: false},
	}
	rows := Rows(euis)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	want := []Row{
		{FullName: "Ann Lee", Username: "ann", Status: "Finished", Style: "finished-cell"},
		{FullName: "Bob Ray", Username: "bob", Status: "On progress", Style: "onprogress-cell"},
	}
	for i, w := range want {
		if rows[i] != w {
			t.Errorf("rows[%d] = %+v, want %+v", i, rows[i], w)
		}
	}
}

func TestRows_Empty(t *testing.T) {
	if rows := Rows(nil); len(rows) != 0 {
		t.Errorf("Rows(nil) = %v, want empty", rows)
	}
}

func TestReloadOptions(t *testing.T) {
	wantSeconds := []int{0, 5, 30, 60, 300}
	wantLabels := []string{"Never", "5 seconds", "30 seconds", "1 minute", "5 minutes"}
	if len(ReloadOptions) != len(wantSeconds) {
		t.Fatalf("got %d options, want %d", len(ReloadOptions), len(wantSeconds))
	}
	for i, opt := range ReloadOptions {
		if opt.Seconds != wantSeconds[i] || opt.Label != wantLabels[i] {
			t.Errorf("option %d = %+v, want {%d %q}", i, opt, wantSeconds[i], wantLabels[i])
		}
	}
}

func TestParseMessage(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"type":"changeReloadTime","reloadTime":30}`))
	if err != nil {
		t.Fatalf("ParseMessage() error: %v", err)
	}
	if msg.Type != MessageChangeReloadTime || msg.ReloadTime != 30 {
		t.Errorf("msg = %+v, want changeReloadTime with 30", msg)
	}

	msg, err = ParseMessage([]byte(`{"type":"reload","reload":true}`))
	if err != nil {
		t.Fatalf("ParseMessage() error: %v", err)
	}
	if msg.Type != MessageReload || !msg.Reload {
		t.Errorf("msg = %+v, want reload", msg)
	}
}

func TestParseMessage_Rejected(t *testing.T) {
	if _, err := ParseMessage([]byte(`{"type":"selfdestruct"}`)); err == nil {
		t.Error("unknown type accepted, want error")
	}
	if _, err := ParseMessage([]byte(`{broken`)); err == nil {
		t.Error("malformed JSON accepted, want error")
	}
}

func TestRenderHTML(t *testing.T) {
	rows := []Row{
		{FullName: "Ann Lee", Username: "ann", Status: StatusFinished, Style: StyleFinished},
		{FullName: "Bob Ray", Username: "bob", Status: StatusOnProgress, Style: StyleOnProgress},
	}
	html, err := RenderHTML("Recursion", rows)
	if err != nil {
		t.Fatalf("RenderHTML() error: %v", err)
	}

	for _, want := range []string{
		"<title>V4T Dashboard: Recursion</title>",
		"<th>Full name</th><th>Username</th><th>Exercise status</th>",
		`<td class="finished-cell">Finished</td>`,
		`<td class="onprogress-cell">On progress</td>`,
		`<option value="0" selected>Never</option>`,
		`<option value="300">5 minutes</option>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered page missing %q", want)
		}
	}
	if !strings.Contains(html, "nonce=") {
		t.Error("rendered page missing script nonce")
	}
}

func TestRenderHTML_FreshNonce(t *testing.T) {
	a, err := RenderHTML("x", nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := RenderHTML("x", nil)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two renders produced identical pages; the nonce should differ")
	}
}
