package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/esurat/internal/agenda"
	"github.com/starford/esurat/internal/attachment"
	"github.com/starford/esurat/internal/dashboard"
	"github.com/starford/esurat/internal/letters"
	"github.com/starford/esurat/internal/models"
	"github.com/starford/esurat/internal/replica"
	"github.com/starford/esurat/internal/testutil"
)

var pngBytes = testutil.PNG

type fakeSession struct {
	user models.User
	ok   bool
}

func (f *fakeSession) Current() (models.User, bool) { return f.user, f.ok }

func testServer(t *testing.T) (*Server, *fakeSession, *replica.Replica) {
	t.Helper()
	r := testutil.Replica(t)
	blobs := testutil.Blobs(t)
	sess := &fakeSession{}
	srv := New(
		letters.NewService(r, testutil.Logger()),
		agenda.NewService(r, agenda.Signer{Name: "Novi Haryanto, S. Adm", NIP: "197111201991031003"}),
		r, blobs, sess,
	)
	return srv, sess, r
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"list_letters":       srv.listLetters,
		"get_letter":         srv.getLetter,
		"create_letter":      srv.createLetter,
		"list_agendas":       srv.listAgendas,
		"format_agenda_date": srv.formatAgendaDate,
		"dashboard_stats":    srv.dashboardStats,
		"upload_attachment":  srv.uploadAttachment,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(ctx, req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func signIn(t *testing.T, sess *fakeSession, r *replica.Replica, username string) {
	t.Helper()
	sess.user, sess.ok = testutil.User(t, r, username), true
}

func letterArgs() map[string]any {
	return map[string]any{
		"direction":       "INCOMING",
		"referenceNumber": "005/UND/2026",
		"date":            "2026-01-20",
		"counterpart":     "Dinas Pendidikan",
		"subject":         "Undangan Rapat",
	}
}

func TestCreateLetterRequiresSession(t *testing.T) {
	srv, _, r := testServer(t)
	res := callTool(t, srv, "create_letter", letterArgs())
	if !res.IsError {
		t.Fatal("expected error without a signed-in user")
	}
	if got := resultText(res); got != "Silakan login terlebih dahulu." {
		t.Errorf("message = %q", got)
	}
	if n := len(r.ListLetters()); n != 0 {
		t.Errorf("letters = %d, want 0", n)
	}
}

func TestCreateGetAndListLetters(t *testing.T) {
	srv, sess, r := testServer(t)
	signIn(t, sess, r, "masuk")

	res := callTool(t, srv, "create_letter", letterArgs())
	if res.IsError {
		t.Fatalf("create_letter: %s", resultText(res))
	}
	var created models.Letter
	if err := json.Unmarshal([]byte(resultText(res)), &created); err != nil {
		t.Fatal(err)
	}
	if created.CreatedBy != "Staf Surat Masuk" {
		t.Errorf("createdBy = %q", created.CreatedBy)
	}

	res = callTool(t, srv, "get_letter", map[string]any{"id": created.ID})
	if !strings.Contains(resultText(res), "005/UND/2026") {
		t.Errorf("get_letter = %q", resultText(res))
	}

	res = callTool(t, srv, "list_letters", map[string]any{"direction": "OUTGOING"})
	var out []models.Letter
	if err := json.Unmarshal([]byte(resultText(res)), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Errorf("outgoing letters = %d, want 0", len(out))
	}

	res = callTool(t, srv, "list_letters", map[string]any{"query": "undangan"})
	if err := json.Unmarshal([]byte(resultText(res)), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Errorf("matching letters = %d, want 1", len(out))
	}
}

func TestCreateLetterRoleGate(t *testing.T) {
	srv, sess, r := testServer(t)
	signIn(t, sess, r, "keluar")
	res := callTool(t, srv, "create_letter", letterArgs())
	if !res.IsError {
		t.Fatal("outgoing staff must not record incoming letters")
	}
}

func TestGetLetterMissing(t *testing.T) {
	srv, _, _ := testServer(t)
	res := callTool(t, srv, "get_letter", map[string]any{"id": "nope"})
	if !res.IsError {
		t.Error("expected error for missing letter")
	}
}

func TestFormatAgendaDate(t *testing.T) {
	srv, _, _ := testServer(t)
	res := callTool(t, srv, "format_agenda_date", map[string]any{"date": "2026-01-23"})
	if got := resultText(res); got != "Jum'at/ 23 Januari 2026" {
		t.Errorf("format_agenda_date = %q", got)
	}
	res = callTool(t, srv, "format_agenda_date", map[string]any{"date": "kemarin"})
	if !res.IsError {
		t.Error("expected error for malformed date")
	}
}

func TestListAgendasAndDashboard(t *testing.T) {
	srv, _, _ := testServer(t)

	res := callTool(t, srv, "list_agendas", map[string]any{})
	if got := strings.TrimSpace(resultText(res)); got != "[]" {
		t.Errorf("list_agendas = %q", got)
	}

	res = callTool(t, srv, "dashboard_stats", map[string]any{})
	var s dashboard.Stats
	if err := json.Unmarshal([]byte(resultText(res)), &s); err != nil {
		t.Fatal(err)
	}
	if s.Users != 3 {
		t.Errorf("users = %d, want 3", s.Users)
	}
}

func TestUploadAttachmentDataURL(t *testing.T) {
	srv, _, _ := testServer(t)

	res := callTool(t, srv, "upload_attachment", map[string]any{"url": attachment.EncodeDataURL("image/png", pngBytes)})
	if res.IsError {
		t.Fatalf("upload_attachment: %s", resultText(res))
	}
	var up uploadResult
	if err := json.Unmarshal([]byte(resultText(res)), &up); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(up.URL, attachment.URLPrefix) || !strings.HasSuffix(up.URL, ".png") {
		t.Errorf("url = %q", up.URL)
	}
	if up.MediaType != "image/png" || up.Size != len(pngBytes) {
		t.Errorf("result = %+v", up)
	}

	data, _, err := srv.blobs.Get(strings.TrimPrefix(up.URL, attachment.URLPrefix))
	if err != nil {
		t.Fatalf("stored file: %v", err)
	}
	if string(data) != string(pngBytes) {
		t.Error("stored content differs")
	}
}

func TestUploadAttachmentRejects(t *testing.T) {
	srv, _, _ := testServer(t)
	for _, u := range []string{
		attachment.EncodeDataURL("text/plain", []byte("hello")),
		"ftp://example.com/scan.pdf",
		"http://127.0.0.1/scan.pdf",
		"http://169.254.169.254/latest/meta-data",
	} {
		if res := callTool(t, srv, "upload_attachment", map[string]any{"url": u}); !res.IsError {
			t.Errorf("expected error for %q", u)
		}
	}
}

func TestLetterFormatResource(t *testing.T) {
	srv, _, _ := testServer(t)
	contents, err := srv.readLetterFormat(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != letterFormatURI || !strings.Contains(tc.Text, "referenceNumber") {
		t.Errorf("unexpected resource %+v", contents[0])
	}
}
