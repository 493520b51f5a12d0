package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/haivivi/tagstream/pkg/assistant"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "WebSocket dev server that parses streamed chunks",
	Long: `Run a WebSocket server for exercising the parser from other
processes. Each connection holds one parse session.

Client frames are JSON commands:

  {"type": "chunk", "data": "...raw assistant text..."}
  {"type": "finish"}
  {"type": "reset"}

After every command the server replies with the session's current block
list, encoded as JSON (default) or msgpack (--format msgpack).

Examples:
  tagstream serve
  tagstream serve --addr :9000 --format msgpack`,
	RunE: runServe,
}

var (
	serveAddr   string
	servePath   string
	serveFormat string
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8087", "listen address")
	serveCmd.Flags().StringVar(&servePath, "path", "/stream", "WebSocket endpoint path")
	serveCmd.Flags().StringVar(&serveFormat, "format", "json", "reply encoding: json, msgpack")

	rootCmd.AddCommand(serveCmd)
}

// streamCommand is one client frame.
type streamCommand struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
}

type streamServer struct {
	parser   *assistant.Parser
	upgrader websocket.Upgrader
	msgpack  bool
}

func runServe(cmd *cobra.Command, args []string) error {
	switch serveFormat {
	case "json", "msgpack":
	default:
		return fmt.Errorf("unsupported reply encoding: %s (use json or msgpack)", serveFormat)
	}
	vocab, err := loadVocabulary()
	if err != nil {
		return err
	}
	parser, err := assistant.NewParser(vocab)
	if err != nil {
		return err
	}

	srv := &streamServer{
		parser: parser,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		msgpack: serveFormat == "msgpack",
	}

	mux := http.NewServeMux()
	mux.HandleFunc(servePath, srv.handleWS)

	httpSrv := &http.Server{Addr: serveAddr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("tagstream: serving", "addr", serveAddr, "path", servePath, "format", serveFormat)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("tagstream: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func (s *streamServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("tagstream: upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	slog.Info("tagstream: client connected", "remote", r.RemoteAddr)
	session := assistant.NewSession(s.parser)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("tagstream: read failed", "remote", r.RemoteAddr, "error", err)
			}
			return
		}

		var cmd streamCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			slog.Warn("tagstream: bad command", "remote", r.RemoteAddr, "error", err)
			continue
		}

		var blocks []assistant.ContentBlock
		switch cmd.Type {
		case "chunk":
			blocks = session.Feed(cmd.Data)
		case "finish":
			blocks = session.Finish()
		case "reset":
			session.Reset()
		default:
			slog.Warn("tagstream: unknown command", "remote", r.RemoteAddr, "type", cmd.Type)
			continue
		}

		if err := s.reply(conn, assistant.EventsFromBlocks(blocks)); err != nil {
			slog.Warn("tagstream: write failed", "remote", r.RemoteAddr, "error", err)
			return
		}
	}
}

func (s *streamServer) reply(conn *websocket.Conn, events []assistant.BlockEvent) error {
	if s.msgpack {
		data, err := msgpack.Marshal(events)
		if err != nil {
			return err
		}
		return conn.WriteMessage(websocket.BinaryMessage, data)
	}
	return conn.WriteJSON(events)
}
