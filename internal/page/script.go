package page

// describeJS holds the shared in-page helpers: element metadata extraction,
// the structural-path guess, and selector evaluation for both CSS and XPath.
// The path guess mirrors the id-or-indexed-tag scheme Facebook debug tooling
// conventionally prints.
const describeJS = `
const __gc = (() => {
	function getPath(node) {
		if (node.id) return '//*[@id="' + node.id + '"]';
		const parts = [];
		while (node && node.nodeType === 1 && node !== document.body) {
			let i = 0, s = node.previousSibling;
			while (s) {
				if (s.nodeType === 1 && s.nodeName === node.nodeName) i++;
				s = s.previousSibling;
			}
			parts.unshift(node.nodeName.toLowerCase() + (i ? '[' + (i + 1) + ']' : ''));
			node = node.parentNode;
		}
		return '//' + parts.join('/');
	}

	function isVisible(el) {
		const rect = el.getBoundingClientRect();
		if (rect.width <= 0 || rect.height <= 0) return false;
		const style = window.getComputedStyle(el);
		return style.display !== 'none' && style.visibility !== 'hidden' && style.opacity !== '0';
	}

	function isDisabled(el) {
		return el.disabled === true ||
			el.hasAttribute('disabled') ||
			el.getAttribute('aria-disabled') === 'true';
	}

	function ref(el) {
		let r = el.getAttribute('data-gc-ref');
		if (!r) {
			window.__gcRefSeq = (window.__gcRefSeq || 0) + 1;
			r = 'gc-' + window.__gcRefSeq;
			el.setAttribute('data-gc-ref', r);
		}
		return r;
	}

	function scope(el) {
		const c = el.closest('[role="dialog"],[aria-modal="true"],[data-pagelet]');
		return c ? getPath(c) : '';
	}

	function describe(el, order) {
		const cls = typeof el.className === 'string' ? el.className : '';
		return {
			ref: ref(el),
			tag: el.tagName.toLowerCase(),
			role: el.getAttribute('role') || '',
			ariaLabel: (el.getAttribute('aria-label') || '').toLowerCase(),
			placeholder: (el.getAttribute('placeholder') || '').toLowerCase(),
			testId: (el.getAttribute('data-testid') || el.getAttribute('data-test-id') || '').toLowerCase(),
			class: cls.toLowerCase(),
			text: (el.textContent || el.value || '').trim().toLowerCase().slice(0, 200),
			editable: el.isContentEditable === true ||
				el.getAttribute('contenteditable') === 'true' ||
				el.tagName === 'TEXTAREA' ||
				(el.tagName === 'INPUT' && !['submit', 'button', 'checkbox', 'radio'].includes(el.type)),
			disabled: isDisabled(el),
			visible: isVisible(el),
			order: order,
			path: getPath(el),
			scope: scope(el)
		};
	}

	function select(selector) {
		if (selector.startsWith('/') || selector.startsWith('(')) {
			const out = [];
			const it = document.evaluate(selector, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
			for (let i = 0; i < it.snapshotLength; i++) {
				const n = it.snapshotItem(i);
				if (n.nodeType === 1) out.push(n);
			}
			return out;
		}
		return Array.from(document.querySelectorAll(selector));
	}

	return { describe, select };
})();
`

// interactiveSelector matches the element kinds discovery cares about:
// editable text surfaces and clickable controls.
const interactiveSelector = `[contenteditable="true"],[role="textbox"],textarea,` +
	`button,[role="button"],input[type="submit"],input[type="button"]`

// scanJS snapshots every interactive element on the page.
const scanJS = `(() => {
	` + describeJS + `
	try {
		const all = __gc.select('` + interactiveSelector + `');
		return all.map((el, i) => __gc.describe(el, i));
	} catch (e) {
		return [];
	}
})()`

// queryJSTemplate evaluates a caller-supplied selector (CSS or XPath). The
// selector is injected JSON-encoded.
const queryJSTemplate = `((selector) => {
	` + describeJS + `
	try {
		return __gc.select(selector).map((el, i) => __gc.describe(el, i));
	} catch (e) {
		return [];
	}
})(%s)`

// clickJSTemplate clicks an element by its data-gc-ref, scrolling it into
// view first. Returns false if the element is gone.
const clickJSTemplate = `((ref) => {
	const el = document.querySelector('[data-gc-ref="' + ref + '"]');
	if (!el) return false;
	el.scrollIntoView({behavior: 'instant', block: 'center'});
	el.click();
	return true;
})(%s)`

// setTextJSTemplate assigns text programmatically and fires a synthetic
// input event, the fallback when direct key simulation fails.
const setTextJSTemplate = `((ref, val) => {
	const el = document.querySelector('[data-gc-ref="' + ref + '"]');
	if (!el) return false;
	el.focus();
	if (el.isContentEditable) {
		document.execCommand('selectAll', false, null);
		document.execCommand('insertText', false, val);
	} else {
		el.value = val;
	}
	el.dispatchEvent(new Event('input', {bubbles: true}));
	el.dispatchEvent(new Event('change', {bubbles: true}));
	return true;
})(%s, %s)`
