package view

import (
	"bytes"
	"html/template"
)

// LandingPageData provides the dynamic fields required by the landing template.
type LandingPageData struct {
	Title         string
	OfferType     string
	OfferID       string
	Price         string
	IntroMediaURL string
	CountdownSecs int
	ReferrerID    string
}

var landingPageTmpl = template.Must(template.New("landing_page").Parse(`
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
			--accent: #7dd3fc;
			--accent-strong: #38bdf8;
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
			width: min(640px, 92vw);
			box-shadow: 0 45px 100px rgba(0,0,0,0.35);
			backdrop-filter: blur(18px);
		}
		h1 { font-size: 1.6rem; margin-bottom: 6px; }
		p { color: var(--muted); margin-top: 0; }
		video {
			width: 100%;
			border-radius: 14px;
			margin: 18px 0;
			background: #000;
		}
		.price {
			font-size: 1.2rem;
			margin: 12px 0;
		}
		.timer { font-size: 0.95rem; color: var(--muted); }
		a.button {
			display: none;
			align-items: center;
			justify-content: center;
			padding: 0 28px;
			height: 48px;
			border-radius: 999px;
			background: linear-gradient(120deg, var(--accent), var(--accent-strong));
			color: #050708;
			font-weight: 600;
			text-decoration: none;
			margin-top: 18px;
		}
		a.button.revealed { display: inline-flex; }
	</style>
</head>
<body>
	<div class="card">
		<h1>{{.Title}}</h1>
		<p>{{.OfferType}} · {{.Price}}</p>

		{{if .IntroMediaURL}}
		<video id="intro" src="{{.IntroMediaURL}}" controls preload="metadata"></video>
		{{end}}

		<div class="timer" id="gate-hint">
			Offer unlocks in <span id="countdown">{{.CountdownSecs}}</span>s of playback…
		</div>

		<a id="cta" class="button" href="#">Buy now</a>
	</div>

	<script>
		(function() {
			// Mirrors the server-side reveal gate: playback-bound countdown,
			// revealed by zero remaining or media end, whichever comes first.
			let remaining = {{.CountdownSecs}};
			let playing = false;
			let revealed = false;
			const cta = document.getElementById("cta");
			const hint = document.getElementById("gate-hint");
			const countdown = document.getElementById("countdown");
			const media = document.getElementById("intro");

			const reveal = () => {
				if (revealed) return;
				revealed = true;
				cta.classList.add("revealed");
				if (hint) hint.style.display = "none";
				clearInterval(timer);
			};

			const timer = setInterval(() => {
				if (revealed || !playing) return;
				remaining -= 1;
				if (countdown) countdown.textContent = Math.max(remaining, 0).toString();
				if (remaining <= 0) reveal();
			}, 1000);

			if (media) {
				media.addEventListener("play", () => { playing = true; });
				media.addEventListener("pause", () => { playing = false; });
				media.addEventListener("ended", reveal);
				media.addEventListener("error", () => { playing = true; });
			} else {
				// No media to gate on: run the countdown on wall clock.
				playing = true;
			}

			// Checkout failure blocks with a message; resubmission is manual.
			const checkoutFailed = (msg) => {
				if (!hint) return;
				hint.style.display = "";
				hint.textContent = msg || "Checkout failed, please try again.";
			};

			cta.addEventListener("click", (e) => {
				e.preventDefault();
				if (!revealed) return;
				fetch("/api/checkout", {
					method: "POST",
					headers: { "Content-Type": "application/json" },
					body: JSON.stringify({
						offer_type: {{.OfferType}},
						offer_id: {{.OfferID}},
						referrer_id: {{.ReferrerID}}
					})
				})
					.then((r) => r.json().catch(() => null).then((body) => {
						if (!r.ok) {
							checkoutFailed(body && body.error);
							return;
						}
						if (body && body.pay_url) window.open(body.pay_url, "_blank");
						if (body && body.settlement_url) window.location.assign(body.settlement_url);
					}))
					.catch(() => checkoutFailed());
			});
		})();
	</script>
</body>
</html>
`))

// RenderLandingPage expands the landing template with the provided data.
func RenderLandingPage(data LandingPageData) (string, error) {
	if data.Title == "" {
		data.Title = "Offer"
	}
	var buf bytes.Buffer
	if err := landingPageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
