package router

// loginPageHTML is a format string; the single verb is the public site URL.
const loginPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="robots" content="noindex">
<title>AetherInc Admin Sign In</title>
<style>
body{font-family:system-ui,sans-serif;background:#0b0d12;color:#e6e8ee;display:flex;align-items:center;justify-content:center;min-height:100vh;margin:0}
form{background:#151922;padding:2rem;border-radius:8px;width:320px}
label{display:block;margin-top:1rem;font-size:.85rem}
input{width:100%%;box-sizing:border-box;padding:.5rem;margin-top:.25rem;border:1px solid #2b3140;border-radius:4px;background:#0b0d12;color:inherit}
button{margin-top:1.5rem;width:100%%;padding:.6rem;border:0;border-radius:4px;background:#5b7cfa;color:#fff;cursor:pointer}
#error{color:#f87171;min-height:1.2rem;margin-top:1rem;font-size:.85rem}
a{color:#8aa2ff}
</style>
</head>
<body>
<form id="login">
<h1>Admin sign in</h1>
<label>Email <input id="email" name="email" type="email" autocomplete="username" required></label>
<label>Password <input id="password" name="password" type="password" autocomplete="current-password" required></label>
<button type="submit">Sign in</button>
<div id="error"></div>
<p><a href="%s">Back to site</a></p>
</form>
<script>
document.getElementById('login').addEventListener('submit', async function (e) {
  e.preventDefault();
  var err = document.getElementById('error');
  err.textContent = '';
  var res = await fetch('/api/auth/login', {
    method: 'POST',
    credentials: 'same-origin',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({
      email: document.getElementById('email').value,
      password: document.getElementById('password').value
    })
  });
  var body = await res.json().catch(function () { return {}; });
  if (!res.ok) {
    err.textContent = body.message || 'Sign in failed';
    return;
  }
  var next = new URLSearchParams(window.location.search).get('callbackUrl') || '/admin';
  if (next.charAt(0) !== '/' || next.charAt(1) === '/') { next = '/admin'; }
  window.location.assign(next);
});
</script>
</body>
</html>
`

const dashboardPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="robots" content="noindex">
<title>AetherInc Admin</title>
<style>
body{font-family:system-ui,sans-serif;background:#0b0d12;color:#e6e8ee;margin:0;padding:2rem}
nav a{margin-right:1rem;color:#8aa2ff;cursor:pointer}
table{border-collapse:collapse;width:100%;margin-top:1rem;font-size:.85rem}
td,th{border-bottom:1px solid #2b3140;padding:.4rem;text-align:left}
button{padding:.4rem .8rem;border:0;border-radius:4px;background:#5b7cfa;color:#fff;cursor:pointer}
</style>
</head>
<body>
<header>
<h1>AetherInc Admin</h1>
<nav>
<a data-view="waitlist">Waitlist</a>
<a data-view="tools">Tools</a>
<a data-view="contact">Contact</a>
<a data-view="terminal-chats">Terminal chats</a>
<a href="/api/admin/analytics/export?format=xlsx">Analytics export</a>
<a href="/api/admin/waitlist/export?format=xlsx">Waitlist export</a>
<button id="logout">Sign out</button>
</nav>
</header>
<main id="view"></main>
<script>
var view = document.getElementById('view');
function render(rows) {
  if (!rows || !rows.length) { view.textContent = 'Nothing here yet.'; return; }
  var cols = Object.keys(rows[0]);
  var t = document.createElement('table');
  var h = t.insertRow();
  cols.forEach(function (c) { var th = document.createElement('th'); th.textContent = c; h.appendChild(th); });
  rows.forEach(function (r) {
    var tr = t.insertRow();
    cols.forEach(function (c) { var v = r[c]; tr.insertCell().textContent = typeof v === 'object' && v !== null ? JSON.stringify(v) : v; });
  });
  view.replaceChildren(t);
}
async function load(name) {
  var res = await fetch('/api/admin/' + name, {credentials: 'same-origin'});
  if (res.status === 401) { window.location.assign('/admin/login?callbackUrl=' + encodeURIComponent('/admin')); return; }
  var body = await res.json();
  var data = body.data || {};
  render(data.entries || data.tools || data.chats || data.forms || []);
}
document.querySelectorAll('nav a[data-view]').forEach(function (a) {
  a.addEventListener('click', function () { load(a.dataset.view); });
});
document.getElementById('logout').addEventListener('click', async function () {
  await fetch('/api/auth/logout', {method: 'POST', credentials: 'same-origin'});
  window.location.assign('/admin/login');
});
load('waitlist');
</script>
</body>
</html>
`
