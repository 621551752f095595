package httpserver

import "html/template"

// formTmpl is the page served on GET /. The field name must match keyField.
var formTmpl = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>ZFS Remote Key Loader</title>
</head>
<body>
<h2>ZFS Remote Key Loader</h2>
<form action="/loadkey" method="post">
<label for="key">Enter decryption key for "{{.Dataset}}":</label><br>
<input type="password" id="key" name="key" autocomplete="off" autofocus><br>
<input type="submit" value="Load Key">
</form>
</body>
</html>
`))

type formData struct {
	Dataset string
}
