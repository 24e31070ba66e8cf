package automation

import (
	"fmt"
	"strings"

	"github.com/deskdial/deskdial/internal/page"
)

// Script templates for driving the telephony web app. Each template returns
// action code that assigns its outcome to `__result`; the page adapter owns
// wrapping and result delivery. All parameters are embedded as JSON-encoded
// literals via page.JSONLiteral, never by splicing raw strings.
//
// The selectors below are calibrated guesses against markup this project
// does not control. When the page changes, GET /dump-dom is the tool for
// re-calibrating them.

// unreadCountScript sums the integer text of every notification badge.
// Non-numeric badge text is skipped rather than failing the whole sum.
func unreadCountScript() string {
	return `
var __badges=document.querySelectorAll('.navItemBadge,[data-unread-count],.unread-badge,[aria-label*="unread"]');
var __sum=0;
for(var i=0;i<__badges.length;i++){
  var n=parseInt((__badges[i].textContent||"").trim(),10);
  if(!isNaN(n))__sum+=n;
}
__result=__sum;`
}

// listScript builds a scraper over the first matching container selector.
// fields maps output keys to candidate selectors tried in order inside each
// item; a missing field degrades to the empty string.
func listScript(itemSelectors []string, limit int, fields map[string][]string) string {
	return fmt.Sprintf(`
var __sels=%s;
var __items=[];
for(var s=0;s<__sels.length;s++){
  var found=document.querySelectorAll(__sels[s]);
  if(found.length>0){__items=found;break;}
}
var __fields=%s;
var __limit=%s;
var __out=[];
for(var i=0;i<__items.length&&i<__limit;i++){
  var item=__items[i];
  var row={};
  for(var key in __fields){
    var v="";
    var cands=__fields[key];
    for(var c=0;c<cands.length;c++){
      var el=item.querySelector(cands[c]);
      if(el){v=(el.textContent||el.getAttribute("aria-label")||"").trim();if(v)break;}
    }
    row[key]=v;
  }
  __out.push(row);
}
__result=__out;`,
		page.JSONLiteral(itemSelectors),
		page.JSONLiteral(fields),
		page.JSONLiteral(limit),
	)
}

func messagesScript(limit int) string {
	return listScript(
		[]string{"gv-thread-item", "[data-thread-id]", ".thread-item", "[role=\"list\"] [role=\"listitem\"]"},
		limit,
		map[string][]string{
			"name":    {"[data-name]", ".thread-name", ".sender", "h3", "[role=\"heading\"]"},
			"phone":   {"[data-phone]", ".thread-phone", ".phone-number"},
			"preview": {".thread-snippet", ".preview", ".snippet", "p"},
			"time":    {"time", ".thread-time", ".timestamp"},
		},
	)
}

func contactsScript(limit int) string {
	return listScript(
		[]string{"gv-contact-item", "[data-contact-id]", ".contact-item", "[role=\"list\"] [role=\"listitem\"]"},
		limit,
		map[string][]string{
			"name":  {"[data-name]", ".contact-name", "h3", "[role=\"heading\"]"},
			"phone": {"[data-phone]", ".contact-phone", ".phone-number"},
			"email": {"[data-email]", ".contact-email", "a[href^=\"mailto:\"]"},
		},
	)
}

func callHistoryScript(limit int) string {
	return listScript(
		[]string{"gv-call-item", "[data-call-id]", ".call-item", "[role=\"list\"] [role=\"listitem\"]"},
		limit,
		map[string][]string{
			"name":     {"[data-name]", ".call-name", "h3", "[role=\"heading\"]"},
			"phone":    {"[data-phone]", ".call-phone", ".phone-number"},
			"time":     {"time", ".call-time", ".timestamp"},
			"kind":     {".call-type", "[data-call-type]", ".direction"},
			"duration": {".call-duration", "[data-duration]"},
		},
	)
}

func voicemailsScript(limit int) string {
	return listScript(
		[]string{"gv-voicemail-item", "[data-voicemail-id]", ".voicemail-item", "[role=\"list\"] [role=\"listitem\"]"},
		limit,
		map[string][]string{
			"name":       {"[data-name]", ".voicemail-name", "h3", "[role=\"heading\"]"},
			"phone":      {"[data-phone]", ".voicemail-phone", ".phone-number"},
			"time":       {"time", ".voicemail-time", ".timestamp"},
			"duration":   {".voicemail-duration", "[data-duration]"},
			"transcript": {".voicemail-transcript", ".transcript", "p"},
		},
	)
}

// loggedInScript checks for an account marker without any network call.
func loggedInScript() string {
	return `
__result=!!(document.querySelector('[aria-label*="Account"]')||document.querySelector('[data-account-email]')||document.querySelector('img[alt*="profile" i]'));`
}

func currentUserScript() string {
	return `
var __el=document.querySelector('[data-account-email]')||document.querySelector('[aria-label*="Account"]');
__result=__el?(__el.getAttribute("data-account-email")||__el.getAttribute("aria-label")||"").trim():"";`
}

// readyProbeScript reports whether the calls view is ready for interaction:
// document interactive, and at least one control mentioning call/dial.
func readyProbeScript() string {
	return `
var __ready=document.readyState==="complete"||document.readyState==="interactive";
var __hasDial=false;
if(__ready){
  var ctrls=document.querySelectorAll('button,[role="button"],a');
  for(var i=0;i<ctrls.length;i++){
    var t=((ctrls[i].textContent||"")+" "+(ctrls[i].getAttribute("aria-label")||"")).toLowerCase();
    if(t.indexOf("call")!==-1||t.indexOf("dial")!==-1){__hasDial=true;break;}
  }
}
__result=__ready&&__hasDial;`
}

// keywordClickScript scans visible, enabled controls for text or aria-label
// matching any keyword (case-insensitive substring), clicks the first match
// and reports `clicked:text:<label>`. Failing that it tries the CSS selector
// fallbacks (`clicked:selector:<sel>`), and failing that returns
// `not-found:<sample of visible control labels>` for diagnosis.
func keywordClickScript(keywords, fallbackSelectors []string) string {
	return fmt.Sprintf(`
var __keys=%s;
var __falls=%s;
function __visible(el){return el.offsetParent!==null&&!el.disabled;}
function __label(el){return ((el.textContent||"")+" "+(el.getAttribute("aria-label")||"")).trim();}
var __ctrls=document.querySelectorAll('button,[role="button"],a,input[type="submit"]');
__result="";
for(var i=0;i<__ctrls.length&&!__result;i++){
  if(!__visible(__ctrls[i]))continue;
  var lab=__label(__ctrls[i]).toLowerCase();
  for(var k=0;k<__keys.length;k++){
    if(lab===__keys[k]||lab.indexOf(__keys[k])!==-1){
      __ctrls[i].click();
      __result="clicked:text:"+__keys[k];
      break;
    }
  }
}
for(var f=0;f<__falls.length&&!__result;f++){
  var el=document.querySelector(__falls[f]);
  if(el&&__visible(el)){el.click();__result="clicked:selector:"+__falls[f];}
}
if(!__result){
  var sample=[];
  for(var j=0;j<__ctrls.length&&sample.length<8;j++){
    if(__visible(__ctrls[j])){var l=__label(__ctrls[j]);if(l)sample.push(l.substring(0,30));}
  }
  __result="not-found:"+sample.join("|");
}`,
		page.JSONLiteral(lowerAll(keywords)),
		page.JSONLiteral(fallbackSelectors),
	)
}

// fillFieldScript fills the first matching input using the native value
// setter so framework-managed inputs register the change.
func fillFieldScript(selectors []string, value string) string {
	return fmt.Sprintf(`
var __sels=%s;
var __el=null;
for(var s=0;s<__sels.length&&!__el;s++){__el=document.querySelector(__sels[s]);}
if(!__el){__result="not-found:"+__sels.join("|");}else{
  __el.focus();
  var tag=__el.tagName.toLowerCase();
  var proto=tag==="textarea"?HTMLTextAreaElement.prototype:HTMLInputElement.prototype;
  var desc=Object.getOwnPropertyDescriptor(proto,"value");
  if(desc&&desc.set){desc.set.call(__el,%s);}else{__el.value=%s;}
  __el.dispatchEvent(new Event("input",{bubbles:true}));
  __el.dispatchEvent(new Event("change",{bubbles:true}));
  __result="filled:"+tag;
}`,
		page.JSONLiteral(selectors),
		page.JSONLiteral(value),
		page.JSONLiteral(value),
	)
}

// searchScript drives the page's search box and scrapes result items.
func searchScript(query string, limit int) string {
	return fmt.Sprintf(`
var __q=%s;
var __input=document.querySelector('input[type="search"]')||document.querySelector('input[placeholder*="earch"]')||document.querySelector('[role="searchbox"]');
if(!__input){__result={error:"search box not found",results:[]};}else{
  __input.focus();
  var desc=Object.getOwnPropertyDescriptor(HTMLInputElement.prototype,"value");
  if(desc&&desc.set){desc.set.call(__input,__q);}else{__input.value=__q;}
  __input.dispatchEvent(new Event("input",{bubbles:true}));
  var items=document.querySelectorAll('[role="option"],.search-result,[data-result-id]');
  var out=[];
  for(var i=0;i<items.length&&i<%s;i++){
    out.push((items[i].textContent||"").trim().substring(0,120));
  }
  __result={results:out};
}`,
		page.JSONLiteral(query),
		page.JSONLiteral(limit),
	)
}

// dumpDOMScript captures a diagnostic snapshot: page identity, nav items,
// and up to maxDumpElements interactive elements with enough attributes to
// recalibrate selectors. Never throws; missing pieces degrade to empties.
func dumpDOMScript() string {
	return fmt.Sprintf(`
var __dump={url:location.href,title:document.title,hasRoot:!!document.querySelector('gv-app,#root,[data-app-root]'),navItems:[],buttons:[],inputs:[],elements:[]};
var __navs=document.querySelectorAll('nav a,[role="navigation"] a,[role="tab"]');
for(var i=0;i<__navs.length;i++){var t=(__navs[i].textContent||"").trim();if(t)__dump.navItems.push(t.substring(0,40));}
var __btns=document.querySelectorAll('button,[role="button"]');
for(var b=0;b<__btns.length;b++){var bt=((__btns[b].textContent||"")||(__btns[b].getAttribute("aria-label")||"")).trim();if(bt)__dump.buttons.push(bt.substring(0,40));}
var __ins=document.querySelectorAll('input,textarea');
for(var n=0;n<__ins.length;n++){__dump.inputs.push((__ins[n].name||__ins[n].id||__ins[n].placeholder||__ins[n].type||"").substring(0,40));}
var __els=document.querySelectorAll('button,a,input,textarea,select,[role="button"],[role="tab"],[role="listitem"]');
for(var e=0;e<__els.length&&__dump.elements.length<%d;e++){
  var el=__els[e];
  var data={};
  for(var a=0;a<el.attributes.length;a++){
    var at=el.attributes[a];
    if(at.name.indexOf("data-")===0)data[at.name]=at.value.substring(0,40);
  }
  __dump.elements.push({
    tag:el.tagName.toLowerCase(),
    id:el.id||"",
    classes:(el.className&&el.className.baseVal!==undefined?el.className.baseVal:el.className)||"",
    ariaLabel:el.getAttribute("aria-label")||"",
    data:data,
    text:(el.textContent||"").trim().substring(0,60)
  });
}
__result=__dump;`, maxDumpElements)
}

// legacyDialScript is the superseded fixed-delay dial flow: open dialpad,
// fill the number, click call, each step gated by a 500ms timeout instead
// of a readiness probe. Kept only as a fallback reference; PlaceCall is the
// authoritative flow.
func legacyDialScript(number string) string {
	return fmt.Sprintf(`
var __num=%s;
__result=new Promise(function(resolve){
  var pad=document.querySelector('[aria-label*="dialpad" i]')||document.querySelector('.dialpad-toggle');
  if(pad)pad.click();
  setTimeout(function(){
    var input=document.querySelector('input[type="tel"]')||document.querySelector('[aria-label*="number" i]');
    if(!input){resolve("failed:number input not found");return;}
    input.value=__num;
    input.dispatchEvent(new Event("input",{bubbles:true}));
    setTimeout(function(){
      var call=document.querySelector('[aria-label*="call" i]')||document.querySelector('.call-button');
      if(!call){resolve("failed:call button not found");return;}
      call.click();
      setTimeout(function(){resolve("ok:dialed");},500);
    },500);
  },500);
});`, page.JSONLiteral(number))
}

// blankPageScript reports whether the document body has no children, the
// heuristic for a page that failed to render and needs a reload.
func blankPageScript() string {
	return `__result=!document.body||document.body.childNodes.length===0;`
}

// injectCSSScript upserts a single managed <style> element. An empty css
// removes the override and the page renders as shipped.
func injectCSSScript(css string) string {
	return fmt.Sprintf(`
var __css=%s;
var __el=document.getElementById("__dd_theme");
if(!__css){if(__el)__el.remove();__result="cleared";}
else{
  if(!__el){__el=document.createElement("style");__el.id="__dd_theme";document.head.appendChild(__el);}
  __el.textContent=__css;
  __result="applied";
}`, page.JSONLiteral(css))
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
