package demosite

// PageDefinition is one demo page. Each page carries deliberately seeded UI
// defects so an audit run against the demo site produces findings from every
// check.
type PageDefinition struct {
	Path  string
	Title string

	// Lang is the html lang attribute; empty seeds the missing-lang defect.
	Lang string

	// Body is the page's inner HTML.
	Body string
}

// AllPages returns the demo pages. Defects per page:
//   - /         img without alt, target=_blank without rel
//   - /pricing  horizontal overflow, illegible font size, repeated word
//   - /contact  form without submit, unnamed/unlabeled input, bare password
//   - /about    broken fragment anchor, dead # and javascript: links,
//     placeholder text, missing lang
//   - /blog     broken image source, link with no accessible name
func AllPages() []PageDefinition {
	return []PageDefinition{
		{
			Path:  "/",
			Title: "Acme Widgets",
			Lang:  "en",
			Body: `
<nav>
  <a href="/pricing">Pricing</a>
  <a href="/contact">Contact</a>
  <a href="/about">About</a>
  <a href="/blog">Blog</a>
</nav>
<h1>Welcome to Acme Widgets</h1>
<p>We make the finest widgets on the internet.</p>
<img src="/static/hero.jpg" width="600" height="200">
<p><a href="https://partners.example.com" target="_blank">Our partners</a></p>`,
		},
		{
			Path:  "/pricing",
			Title: "Pricing — Acme Widgets",
			Lang:  "en",
			Body: `
<h1>Pricing</h1>
<div style="width:3000px;background:#eee">
  <p>Our plans scale with the the size of your team.</p>
</div>
<table>
  <tr><td>Starter</td><td>$9/mo</td></tr>
  <tr><td>Team</td><td>$49/mo</td></tr>
</table>
<p style="font-size:8px">Prices exclude VAT. Terms apply.</p>
<p><a href="/">Back home</a></p>`,
		},
		{
			Path:  "/contact",
			Title: "Contact — Acme Widgets",
			Lang:  "en",
			Body: `
<h1>Contact us</h1>
<form action="/contact" method="post">
  <input type="text" placeholder="Your name">
  <input type="email" name="email" placeholder="Email">
  <input type="password" name="secret">
</form>
<p><a href="/">Back home</a></p>`,
		},
		{
			Path:  "/about",
			Title: "About — Acme Widgets",
			Body: `
<h1>About</h1>
<p>Lorem ipsum dolor sit amet, consectetur adipiscing elit.</p>
<p><a href="#team">Meet the team</a></p>
<p><a href="#">Careers</a></p>
<p><a href="javascript:void(0)">Press kit</a></p>
<p><a href="/">Back home</a></p>`,
		},
		{
			Path:  "/blog",
			Title: "Blog — Acme Widgets",
			Lang:  "en",
			Body: `
<h1>Blog</h1>
<article>
  <h2>Introducing Widget 2.0</h2>
  <img src="/static/widget-2.png" alt="Widget 2.0 announcement banner">
  <img src="/static/does-not-exist.png" alt="Release chart">
  <p>Read the announcement <a href="/blog"></a></p>
</article>
<p><a href="/">Back home</a></p>`,
		},
	}
}
