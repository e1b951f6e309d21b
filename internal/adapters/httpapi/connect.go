package httpapi

import (
	"html/template"
	"net/http"
)

// страница перезагружается каждые 2 секунды, пока сессия не готова
var connectPage = template.Must(template.New("connect").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>WhatsApp Gateway</title>
{{- if not .Connected}}
<meta http-equiv="refresh" content="2">
{{- end}}
<style>
body { font-family: sans-serif; text-align: center; padding-top: 40px; }
.ok { color: #128c7e; }
.wait { color: #888; }
</style>
</head>
<body>
<h1>WhatsApp Gateway</h1>
{{- if .Connected}}
<p class="ok">Connected. The session is ready.</p>
{{- else if .QRCode}}
<p>Scan this code with WhatsApp &rarr; Linked devices.</p>
<img src="{{.QRCode}}" alt="pairing code" width="256" height="256">
{{- else}}
<p class="wait">Waiting for a pairing code&hellip;</p>
{{- end}}
</body>
</html>
`))

type connectView struct {
	Connected bool
	QRCode    template.URL
}

// Connect renders the pairing page for the same three states as /qr.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	ready, img := h.state.Snapshot()
	view := connectView{Connected: ready}
	if !ready && img != "" {
		// data:image/png;base64 URI из адаптера, html/template иначе его вырежет
		view.QRCode = template.URL(img)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := connectPage.Execute(w, view); err != nil {
		h.log.Error("connect: failed to render page", "error", err)
	}
}
