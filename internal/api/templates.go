package api

import (
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

// Renderer serves the app's HTML pages through Echo's renderer contract.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() *Renderer {
	root := template.New("")
	for name, body := range pages {
		template.Must(root.New(name).Parse(body))
	}
	return &Renderer{templates: root}
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

var pages = map[string]string{
	"index.html": `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Home</title></head>
<body>
	<h1>Welcome</h1>
	<p>Please choose an option to continue.</p>
	<ul>
		<li><a href="/login">Log In</a></li>
		<li><a href="/signup">Sign Up</a></li>
		<li><a href="/predict">Make a Prediction</a></li>
	</ul>
</body>
</html>
`,

	"signup.html": `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Sign Up</title></head>
<body>
	<h1>Create an Account</h1>
	{{if .Message}}<p>{{.Message}}</p>{{end}}
	<form action="/signup" method="post">
		<label>Username <input type="text" name="username" required></label><br>
		<label>Email <input type="email" name="email" required></label><br>
		<label>Password <input type="password" name="password" required></label><br>
		<button type="submit">Sign Up</button>
	</form>
	<p>Already have an account? <a href="/login">Log In</a></p>
</body>
</html>
`,

	"login.html": `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Log In</title></head>
<body>
	<h1>Log In</h1>
	{{if .Message}}<p>{{.Message}}</p>{{end}}
	<form action="/login" method="post">
		<label>Email <input type="email" name="email" required></label><br>
		<label>Password <input type="password" name="password" required></label><br>
		<button type="submit">Log In</button>
	</form>
	<p>Don't have an account? <a href="/signup">Sign Up</a></p>
</body>
</html>
`,

	"dashboard.html": `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Dashboard</title></head>
<body>
	<h1>Hello, {{.Username}}!</h1>
	<p>Welcome to your dashboard.</p>
	{{if .Model}}
	<p>Model ready: expects {{.Model.ExpectedFeatures}} features, produces {{.Model.Targets}} targets.</p>
	{{else}}
	<p>Model not loaded on server.</p>
	{{end}}
	<ul>
		<li><a href="/predict">Go to Prediction Page</a></li>
		<li><a href="/logout">Log Out</a></li>
	</ul>
</body>
</html>
`,

	"predict.html": `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Upload File for Prediction</title></head>
<body>
	<h1>Upload File for Prediction</h1>
	<form action="/predict" method="post" enctype="multipart/form-data">
		<input type="file" name="file" required>
		<button type="submit">Predict</button>
	</form>
	{{if .Message}}<p>{{.Message}}</p>{{end}}
	{{if .Result}}
	<p>✅ Prediction done! {{.Result.RowCount}} rows processed.
		<a href="/download">📥 Download CSV</a></p>
	<table border="1">
		<tr>{{range .Result.Preview.Columns}}<th>{{.}}</th>{{end}}</tr>
		{{range .Result.Preview.Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}
	</table>
	{{end}}
	<p><a href="/dashboard">Go to Dashboard</a></p>
</body>
</html>
`,
}
