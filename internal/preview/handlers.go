package preview

import (
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcncl/jsontree/internal/render"
	"github.com/mcncl/jsontree/internal/value"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{margin:0;padding:16px}
{{.Stylesheet}}</style>
</head>
<body>
<div id="tree" data-version="{{.Version}}">{{.Fragment}}</div>
<script>
(function () {
  var tree = document.getElementById("tree");
  var copiedLabel = {{.CopiedLabel}};
  var copyTimeout = {{.CopyTimeout}};
  var copied = false;
  var boxThreshold = {{.BoxThreshold}};

  function fitBox() {
    var code = tree.querySelector(".boxed > .jv-code");
    var more = tree.querySelector(".jv-more");
    if (code && more) more.style.display = code.scrollHeight >= boxThreshold ? "" : "none";
  }
  fitBox();
  tree.addEventListener("toggle", fitBox, true);
  window.addEventListener("resize", fitBox);

  tree.addEventListener("click", function (e) {
    var button = e.target.closest(".jv-button");
    if (!button || copied || !navigator.clipboard) return;
    navigator.clipboard.writeText(button.dataset.clipboardText).then(function () {
      var label = button.textContent;
      copied = true;
      button.textContent = copiedLabel;
      setTimeout(function () {
        copied = false;
        button.textContent = label;
      }, copyTimeout);
    });
  });

  var scheme = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(scheme + location.host + "/ws");
  ws.onmessage = function (e) {
    var msg = JSON.parse(e.data);
    if (msg.type === "update" && msg.version > Number(tree.dataset.version)) {
      tree.innerHTML = msg.html;
      tree.dataset.version = msg.version;
      copied = false;
      fitBox();
    }
  };
})();
</script>
</body>
</html>
`))

type pageData struct {
	Title        string
	Stylesheet   template.CSS
	Fragment     template.HTML
	Version      int
	CopiedLabel  string
	CopyTimeout  int64
	BoxThreshold int
}

// update is the live-update message sent to open pages.
type update struct {
	Type    string `json:"type"`
	Version int    `json:"version"`
	HTML    string `json:"html"`
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	_, version := s.Root()
	data := pageData{
		Title:        s.opts.Title,
		Stylesheet:   template.CSS(render.Stylesheet),
		Fragment:     template.HTML(s.Fragment()),
		Version:      version,
		CopiedLabel:  s.opts.CopiedLabel,
		CopyTimeout:  s.opts.CopyTimeout.Milliseconds(),
		BoxThreshold: render.BoxThreshold,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error("render page", "err", err)
	}
}

func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	_, version := s.Root()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Tree-Version", strconv.Itoa(version))
	_, _ = w.Write([]byte(s.Fragment()))
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	root, _ := s.Root()
	text, ok := value.MarshalIndent(root, "  ")
	if !ok {
		http.Error(w, "value has no JSON form", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(text))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", "err", err)
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = struct{}{}
	s.sessions.Inc()
	err = s.write(conn, s.snapshot())
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		s.remove(conn)
		s.clientsMu.Unlock()
	}()
	if err != nil {
		return
	}

	// pages never send anything; reading notices the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read", "err", err)
			}
			return
		}
	}
}

func (s *Server) snapshot() update {
	_, version := s.Root()
	return update{Type: "update", Version: version, HTML: s.Fragment()}
}

func (s *Server) broadcast() {
	msg := s.snapshot()

	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for conn := range s.clients {
		if err := s.write(conn, msg); err != nil {
			s.logger.Debug("websocket write", "err", err)
			s.remove(conn)
		}
	}
}

// write sends msg with a deadline. Callers hold clientsMu.
func (s *Server) write(conn *websocket.Conn, msg update) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

// remove closes conn and forgets it. Callers hold clientsMu.
func (s *Server) remove(conn *websocket.Conn) {
	if _, ok := s.clients[conn]; ok {
		delete(s.clients, conn)
		s.sessions.Dec()
	}
	_ = conn.Close()
}

func (s *Server) closeClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for conn := range s.clients {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(time.Second))
		_ = conn.Close()
	}
}
