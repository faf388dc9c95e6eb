// Package mcpserver exposes the E-Surat archive to LLM clients as a Model
// Context Protocol server over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/esurat/internal/agenda"
	"github.com/starford/esurat/internal/apperr"
	"github.com/starford/esurat/internal/dashboard"
	"github.com/starford/esurat/internal/letters"
	"github.com/starford/esurat/internal/models"
	"github.com/starford/esurat/internal/storage"
)

// letterFormatURI is the resource describing the letter record format.
const letterFormatURI = "esurat://letter-format"

// Session reports who is signed in on this machine.
type Session interface {
	Current() (models.User, bool)
}

// Server wraps the MCP server with the E-Surat tools.
type Server struct {
	mcp     *server.MCPServer
	letters *letters.Service
	agendas *agenda.Service
	dir     dashboard.Source
	blobs   storage.Blobs
	session Session
	now     func() time.Time
}

// New creates the MCP server with every tool registered.
func New(ls *letters.Service, as *agenda.Service, dir dashboard.Source, blobs storage.Blobs, sess Session) *Server {
	s := &Server{letters: ls, agendas: as, dir: dir, blobs: blobs, session: sess, now: time.Now}

	s.mcp = server.NewMCPServer(
		"E-Surat",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_letters",
		mcp.WithDescription("List archived letters newest first, optionally filtered by direction and a search query."),
		mcp.WithString("direction", mcp.Description("INCOMING or OUTGOING; empty for both"), mcp.Enum("", "INCOMING", "OUTGOING")),
		mcp.WithString("query", mcp.Description("Case-insensitive match on reference number, subject or counterpart")),
	), s.listLetters)

	s.mcp.AddTool(mcp.NewTool("get_letter",
		mcp.WithDescription("Read one letter including its disposition."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Letter id")),
	), s.getLetter)

	s.mcp.AddTool(mcp.NewTool("create_letter",
		mcp.WithDescription("Record a letter as the user signed in with `esurat login`. "+
			"Read the esurat://letter-format resource first."),
		mcp.WithString("direction", mcp.Required(), mcp.Enum("INCOMING", "OUTGOING")),
		mcp.WithString("referenceNumber", mcp.Required()),
		mcp.WithString("date", mcp.Required(), mcp.Description("YYYY-MM-DD")),
		mcp.WithString("counterpart", mcp.Required(), mcp.Description("Sender for incoming, recipient for outgoing letters")),
		mcp.WithString("subject", mcp.Required()),
		mcp.WithString("description"),
		mcp.WithArray("attachments", mcp.Description("Attachment URLs returned by upload_attachment"), mcp.WithStringItems()),
	), s.createLetter)

	s.mcp.AddTool(mcp.NewTool("list_agendas",
		mcp.WithDescription("List daily agendas newest first."),
	), s.listAgendas)

	s.mcp.AddTool(mcp.NewTool("format_agenda_date",
		mcp.WithDescription("Format a YYYY-MM-DD date as the Indonesian agenda heading, e.g. \"Jum'at/ 23 Januari 2026\"."),
		mcp.WithString("date", mcp.Required()),
	), s.formatAgendaDate)

	s.mcp.AddTool(mcp.NewTool("dashboard_stats",
		mcp.WithDescription("Counts of incoming and outgoing letters, users, letters recorded today and the most recent letters."),
	), s.dashboardStats)

	s.mcp.AddTool(mcp.NewTool("upload_attachment",
		mcp.WithDescription("Store a scanned document (JPG/PNG or PDF) from a data URL or an http(s) URL. "+
			"Returns the /attachments/ URL to put in a letter's attachments."),
		mcp.WithString("url", mcp.Required(), mcp.Description("data: URL or http(s) URL")),
	), s.uploadAttachment)

	s.mcp.AddResource(
		mcp.NewResource(letterFormatURI, "Letter Format",
			mcp.WithResourceDescription("Fields and rules of an archived letter record."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readLetterFormat,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(apperr.Message(err))
}

func (s *Server) listLetters(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.letters.List(letters.Filter{
		Direction: models.Direction(req.GetString("direction", "")),
		Query:     req.GetString("query", ""),
	}))
}

func (s *Server) getLetter(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	l, err := s.letters.Get(id)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(l)
}

func (s *Server) createLetter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	actor, ok := s.session.Current()
	if !ok {
		return errorResult(apperr.ErrUnauthorized), nil
	}
	in := models.Letter{
		Direction:       models.Direction(req.GetString("direction", "")),
		ReferenceNumber: req.GetString("referenceNumber", ""),
		Date:            req.GetString("date", ""),
		Counterpart:     req.GetString("counterpart", ""),
		Subject:         req.GetString("subject", ""),
		Description:     req.GetString("description", ""),
		Attachments:     req.GetStringSlice("attachments", nil),
	}
	l, err := s.letters.Add(ctx, actor, in)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(l)
}

func (s *Server) listAgendas(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.agendas.List())
}

func (s *Server) formatAgendaDate(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := agenda.DayDateFor(date)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) dashboardStats(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(dashboard.Compute(s.dir, s.now()))
}

func (s *Server) readLetterFormat(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      letterFormatURI,
			MIMEType: "text/markdown",
			Text:     LetterFormat,
		},
	}, nil
}
