package api

// resetTemplates holds the pages of the password reset flow
const resetTemplates = `
{{define "reset_form.html"}}<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Reset your password</title></head>
<body>
  <h1>Reset your password</h1>
  {{if .Error}}<p style="color:#b00">{{.Error}}</p>{{end}}
  <form method="POST" action="/api/users/reset-password/{{.Token}}">
    <label>New password <input type="password" name="password" required minlength="8"></label>
    <label>Confirm password <input type="password" name="confirmPassword" required minlength="8"></label>
    <button type="submit">Reset password</button>
  </form>
</body>
</html>{{end}}

{{define "reset_result.html"}}<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Password reset</title></head>
<body>
  <h1>{{.Title}}</h1>
  <p>{{.Message}}</p>
</body>
</html>{{end}}
`
