package view

import (
	"bytes"
	"html/template"
)

// SettlementPageData provides the dynamic fields for the settlement screen.
type SettlementPageData struct {
	Title         string
	TransactionID string
	StatusURL     string
	SuccessURL    string
	PollInterval  int // seconds between status checks
	BudgetSecs    int // total seconds before the screen gives up
	Missing       bool
}

var settlementPageTmpl = template.Must(template.New("settlement_page").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<title>{{.Title}}</title>
	<style>
		:root {
			--bg: #090a0f;
			--card: rgba(255, 255, 255, 0.05);
			--border: rgba(255, 255, 255, 0.15);
			--text: #e7ecff;
			--muted: #a1acc5;
			--ok: #4ade80;
			--bad: #f87171;
			font-family: "Inter", -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
		}
		* { box-sizing: border-box; }
		body {
			margin: 0;
			min-height: 100vh;
			display: flex;
			align-items: center;
			justify-content: center;
			background: radial-gradient(circle at 20% 20%, #111827, #030712 60%);
			color: var(--text);
		}
		.card {
			background: var(--card);
			border: 1px solid var(--border);
			border-radius: 18px;
			padding: 32px;
			width: min(520px, 92vw);
			text-align: center;
		}
		h1 { font-size: 1.4rem; }
		p { color: var(--muted); }
		.ok { color: var(--ok); }
		.bad { color: var(--bad); }
		.txn {
			margin-top: 16px;
			font-size: 0.85rem;
			color: rgba(231, 236, 255, 0.65);
			word-break: break-all;
		}
	</style>
</head>
<body>
	<div class="card">
		{{if .Missing}}
		<h1 class="bad">Something went wrong</h1>
		<p>We could not find a payment to confirm. Please go back and try again.</p>
		<p><a href="javascript:history.back()">Go back</a></p>
		{{else}}
		<h1 id="headline">Confirming your payment…</h1>
		<p id="detail">This usually takes a few seconds. Checking every {{.PollInterval}}s.</p>
		<div class="txn">Transaction: {{.TransactionID}}</div>
		{{end}}
	</div>

	{{if not .Missing}}
	<script>
		(function() {
			let remaining = {{.BudgetSecs}};
			let done = false;
			const headline = document.getElementById("headline");
			const detail = document.getElementById("detail");

			const finish = (status) => {
				if (done) return; // one-way latch: stale responses ignored
				done = true;
				clearInterval(timer);
				if (status === "captured") {
					headline.textContent = "Payment confirmed";
					headline.className = "ok";
					detail.textContent = "Redirecting you to your library…";
					setTimeout(() => window.location.assign({{.SuccessURL}}), 2500);
				} else {
					headline.textContent = "Payment failed";
					headline.className = "bad";
					detail.textContent = "Quote transaction {{.TransactionID}} when contacting support.";
				}
			};

			const poll = () => {
				fetch({{.StatusURL}})
					.then((r) => r.ok ? r.json() : null)
					.then((body) => {
						if (!body || done) return;
						if (body.status === "captured" || body.status === "failed") {
							finish(body.status);
						}
					})
					.catch(() => {});
			};

			const timer = setInterval(() => {
				remaining -= {{.PollInterval}};
				if (remaining <= 0) {
					finish("failed"); // timeout is itself a failure
					return;
				}
				poll();
			}, {{.PollInterval}} * 1000);
			poll();
		})();
	</script>
	{{end}}
</body>
</html>
`))

// RenderSettlementPage expands the settlement template with the provided data.
func RenderSettlementPage(data SettlementPageData) (string, error) {
	if data.Title == "" {
		data.Title = "Confirming payment"
	}
	if data.PollInterval <= 0 {
		data.PollInterval = 5
	}
	if data.BudgetSecs <= 0 {
		data.BudgetSecs = 60
	}
	var buf bytes.Buffer
	if err := settlementPageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
