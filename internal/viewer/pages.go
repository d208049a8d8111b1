package viewer

import (
	"net/http"
	"strings"

	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"

	"logviewer/pkg/identity"
	"logviewer/pkg/logs"
)

const stylesheet = `
body{background:#36393f;color:#dcddde;font-family:Whitney,"Helvetica Neue",Helvetica,Arial,sans-serif;margin:0}
main{max-width:960px;margin:0 auto;padding:24px}
a{color:#00b0f4}
.muted{color:#72767d;font-size:.85em}
.thread-info{border-bottom:1px solid #4f545c;padding-bottom:12px;margin-bottom:12px}
.message{display:flex;gap:12px;padding:6px 0}
.message img{width:40px;height:40px;border-radius:50%}
.message .author{font-weight:600}
.message.mod .author{color:#7289da}
.message.internal,.message.note{opacity:.7}
.content{white-space:pre-wrap;word-wrap:break-word}
`

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

func layout(title string, body ...gomponents.Node) gomponents.Node {
	return html.Doctype(html.HTML(
		html.Lang("en"),
		html.Head(
			html.Meta(html.Charset("utf-8")),
			html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
			html.TitleEl(gomponents.Text(title+" | Modmail Logs")),
			html.StyleEl(gomponents.Raw(stylesheet)),
		),
		html.Body(html.Main(gomponents.Group(body))),
	))
}

func indexPage(ident identity.Identity) gomponents.Node {
	status := html.P(html.Class("muted"), gomponents.Text("Not logged in."))
	if ident.Authenticated {
		status = html.P(html.Class("muted"),
			gomponents.Text("Logged in as "+ident.User.String()+". "),
			html.A(html.Href("/logout"), gomponents.Text("Log out")),
		)
	}
	return layout("Home",
		html.H1(gomponents.Text("Modmail Logs")),
		html.P(gomponents.Text("Open a log with the link your modmail bot posted when the thread was closed.")),
		status,
	)
}

func errorPage(title, message string) gomponents.Node {
	return layout(title,
		html.H1(gomponents.Text(title)),
		html.P(gomponents.Text(message)),
		html.P(html.A(html.Href("/"), gomponents.Text("Back to home"))),
	)
}

func logPage(gid string, doc logs.LogDocument) gomponents.Node {
	messages := make([]gomponents.Node, 0, len(doc.Messages))
	for _, m := range doc.Messages {
		messages = append(messages, messageNode(m))
	}

	info := []gomponents.Node{
		html.P(gomponents.Text(threadOpener(doc))),
		html.P(html.Class("muted"), gomponents.Text("Created "+formatStamp(doc.CreatedAt, stampLong))),
	}
	if !doc.Open && doc.Closer != nil {
		info = append(info, html.P(html.Class("muted"),
			gomponents.Text("Closed by "+doc.Closer.String()+" "+formatStamp(doc.ClosedAt, stampLong))))
	}
	info = append(info, html.P(html.A(html.Href("/"+gid+"/raw/"+doc.Key), gomponents.Text("View as plain text"))))

	return layout("Log "+doc.Key,
		html.Div(html.Class("thread-info"), gomponents.Group(info)),
		html.Div(html.Class("messages"), gomponents.Group(messages)),
	)
}

func messageNode(m logs.Message) gomponents.Node {
	classes := []string{"message"}
	if m.Author.Mod {
		classes = append(classes, "mod")
	}
	if m.Type != "" {
		classes = append(classes, m.Type)
	}

	attachments := make([]gomponents.Node, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		attachments = append(attachments, html.Li(html.A(html.Href(a.URL), gomponents.Text(a.Name()))))
	}

	body := []gomponents.Node{
		html.Div(
			html.Span(html.Class("author"), gomponents.Text(m.Author.String())),
			gomponents.Text(" "),
			html.Span(html.Class("muted"), gomponents.Text(formatStamp(m.Timestamp, stampShort))),
		),
		html.Div(html.Class("content"), gomponents.Text(m.Content)),
	}
	if len(attachments) > 0 {
		body = append(body, html.Ul(gomponents.Group(attachments)))
	}

	avatar := gomponents.Node(gomponents.Group(nil))
	if m.Author.AvatarURL != "" {
		avatar = html.Img(html.Src(m.Author.AvatarURL), html.Alt(m.Author.Name))
	}
	return html.Div(
		html.Class(strings.Join(classes, " ")),
		avatar,
		html.Div(gomponents.Group(body)),
	)
}
