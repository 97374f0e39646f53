package browser

import (
	"context"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// stealthScript patches the most common automation tells before any page
// script runs. Facebook's login flow checks several of these.
const stealthScript = `
(function() {
	'use strict';

	// navigator.webdriver is the first thing anti-automation checks read.
	Object.defineProperty(navigator, 'webdriver', {
		get: () => undefined,
		configurable: true
	});
	delete Object.getPrototypeOf(navigator).webdriver;

	// Headless Chrome ships an empty plugin list.
	const mockPlugins = [
		{ name: 'Chrome PDF Plugin', description: 'Portable Document Format', filename: 'internal-pdf-viewer' },
		{ name: 'Chrome PDF Viewer', description: '', filename: 'mhjfbmdgcfjbbpaeojofohoefgiehjai' }
	];
	Object.defineProperty(navigator, 'plugins', {
		get: () => mockPlugins,
		configurable: true
	});

	Object.defineProperty(navigator, 'languages', {
		get: () => Object.freeze(['en-US', 'en']),
		configurable: true
	});

	if (!window.chrome) {
		Object.defineProperty(window, 'chrome', { value: { runtime: {} }, writable: true });
	}

	const originalQuery = Permissions.prototype.query;
	Permissions.prototype.query = function(parameters) {
		if (parameters.name === 'notifications') {
			return Promise.resolve({ state: Notification.permission });
		}
		return originalQuery.call(this, parameters);
	};
})();
`

// execAllocatorOptions returns the Chrome flags for a session. Stealth adds
// the automation-hiding flags on top of the basic headless setup.
func execAllocatorOptions(cfg Config) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-notifications", true),
		chromedp.WindowSize(1280, 1024),
	)

	if cfg.Lang != "" {
		opts = append(opts,
			chromedp.Flag("lang", cfg.Lang),
			chromedp.Flag("accept-lang", cfg.Lang),
		)
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	if cfg.Stealth {
		opts = append(opts,
			chromedp.Flag("disable-features", "IsolateOrigins,site-per-process"),
			chromedp.Flag("excludeSwitches", "enable-automation"),
			chromedp.Flag("useAutomationExtension", false),
			chromedp.Flag("disable-infobars", true),
			chromedp.Flag("disable-plugins-discovery", true),
		)
	}

	if chromePath := FindChromePath(); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	return opts
}

// injectStealthScript returns an action that installs the stealth patches
// on every new document. Must run before navigation.
func injectStealthScript() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
		return err
	})
}
