package browser

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
)

const markerAttr = "data-roster-marker"

// 所有脚本都写成函数定义,chromedp 侧以 (fn)() 的形式求值
const findFn = `const find = (sel) => {
	if (sel.startsWith('/') || sel.startsWith('(')) {
		const r = document.evaluate(sel, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
		const out = [];
		for (let i = 0; i < r.snapshotLength; i++) out.push(r.snapshotItem(i));
		return out;
	}
	return Array.from(document.querySelectorAll(sel));
};`

var markerSeq atomic.Uint64

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func countScript(selector string) string {
	return fmt.Sprintf(`() => { %s return find(%s).length; }`, findFn, quote(selector))
}

func textsScript(selector string) string {
	return fmt.Sprintf(`() => { %s return find(%s).map(el => el.innerText || el.textContent || ''); }`, findFn, quote(selector))
}

// markScript 标记第 index 个匹配元素(负数从末尾算起),没有匹配时返回空字符串
func markScript(selector string, index int, marker string) string {
	return fmt.Sprintf(`() => { %s
	const els = find(%s);
	const i = %d < 0 ? els.length + %d : %d;
	if (i < 0 || i >= els.length) return '';
	els[i].setAttribute(%s, %s);
	return %s;
}`, findFn, quote(selector), index, index, index, quote(markerAttr), quote(marker), quote(marker))
}

func attachedScript(marker string) string {
	return fmt.Sprintf(`() => document.querySelector(%s) !== null`, quote(markerSelector(marker)))
}

func markerSelector(marker string) string {
	return "[" + markerAttr + "=" + strconv.Quote(marker) + "]"
}

func nextMarker() string {
	return "m" + strconv.FormatUint(markerSeq.Add(1), 10)
}
