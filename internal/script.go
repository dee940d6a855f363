package internal

import (
	"fmt"
	"sort"
	"strings"
)

// 不做 URL 编码的分页参数.
const (
	paramPage  = "page"
	paramLimit = "limit"
)

// requestBodyPrefix 请求体中的系统参数部分.
const requestBodyPrefix = "_app=${appKey}&_s=&_sign=${signature}&_t=${time}&"

// signingScriptTemplate 前置脚本2，%s 处插入参数收集语句.
const signingScriptTemplate = `import java.security.MessageDigest;
import java.net.URLEncoder;
import java.util.ArrayList;

ArrayList paramParts = new ArrayList();
%s

StringBuilder argsBuilder = new StringBuilder();
for (int i = 0; i < paramParts.size(); i++) {
    if (i > 0) {
        argsBuilder.append("&");
    }
    argsBuilder.append(paramParts.get(i));
}
String argsBody = argsBuilder.toString();

String time = String.valueOf(System.currentTimeMillis() / 1000);
String stringToSign = vars.get("secret") + "_app=" + vars.get("appKey") + "&_s=&_t=" + time + "&" + argsBody + vars.get("secret");
log.info("String to sign: " + stringToSign);

MessageDigest md = MessageDigest.getInstance("MD5");
byte[] digest = md.digest(stringToSign.getBytes("UTF-8"));
StringBuilder hex = new StringBuilder();
for (int i = 0; i < digest.length; i++) {
    hex.append(Integer.toHexString((digest[i] & 0xFF) | 0x100).substring(1, 3));
}
String signature = hex.toString().toUpperCase();
vars.put("signature", signature);
vars.put("time", time);`

func isRawParam(name string) bool {
	return name == paramPage || name == paramLimit
}

// Generate 为单个用例生成变量定义、签名脚本和请求体.
// 只处理接口文档中声明过的参数，其余静默跳过.
func Generate(args []ParamDef, tc TestCase) ScriptSet {
	entries := make([]Entry, 0, len(args))
	overrides := make(map[string]string)
	seen := make(map[string]bool, len(args))

	for _, def := range args {
		if seen[def.Name] {
			continue
		}
		v, ok := tc.Param(def.Name)
		if !ok {
			continue
		}
		seen[def.Name] = true

		switch {
		case def.IsComplex():
			// 复杂对象统一编码参数同名变量，字面量先压缩存入
			if !v.IsReference() {
				overrides[def.Name] = NormalizeCompactJSON(v)
			}
			entries = append(entries, Entry{Name: def.Name, Value: Reference(def.Name), URLEncode: true})
		case v.IsReference():
			entries = append(entries, Entry{Name: def.Name, Value: v, URLEncode: !isRawParam(def.Name)})
		default:
			entries = append(entries, Entry{Name: def.Name, Value: v})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	set := ScriptSet{
		CaseName: tc.Name,
		Entries:  entries,
	}
	set.Canonical = CanonicalString(entries)
	set.Literals = caseLiterals(tc, overrides)
	set.VariableDefs = variableDefs(set.Literals)
	set.SigningScript = signingScript(entries)
	set.RequestBody = requestBodyPrefix + set.Canonical
	return set
}

// CanonicalString 渲染按名称排序后的 name=value 串.
func CanonicalString(entries []Entry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, e.Name+"="+renderEntryValue(e))
	}
	return strings.Join(parts, "&")
}

func renderEntryValue(e Entry) string {
	if !e.Value.IsReference() {
		return literalText(e.Value)
	}
	if e.URLEncode {
		return "${__urlencode(${" + e.Value.RefName() + "})}"
	}
	return "${" + e.Value.RefName() + "}"
}

// caseLiterals 收集用例中所有字面量，按名称排序；复杂对象使用压缩后的值.
func caseLiterals(tc TestCase, overrides map[string]string) []CaseParam {
	var literals []CaseParam
	for _, p := range tc.Params {
		if p.Value.IsReference() {
			continue
		}
		stored := literalText(p.Value)
		if o, ok := overrides[p.Name]; ok {
			stored = o
		}
		literals = append(literals, CaseParam{Name: p.Name, Value: Literal(stored)})
	}
	sort.SliceStable(literals, func(i, j int) bool {
		return literals[i].Name < literals[j].Name
	})
	return literals
}

func variableDefs(literals []CaseParam) string {
	if len(literals) == 0 {
		return ""
	}
	lines := make([]string, 0, len(literals))
	for _, l := range literals {
		lines = append(lines, fmt.Sprintf(`vars.put("%s", "%s");`, escapeJavaString(l.Name), escapeJavaString(l.Value.Text())))
	}
	return strings.Join(lines, "\n")
}

func signingScript(entries []Entry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Value.IsReference() {
			part := e.Name + "=" + literalText(e.Value)
			lines = append(lines, fmt.Sprintf(`paramParts.add("%s");`, escapeJavaString(part)))
			continue
		}
		ref := escapeJavaString(e.Value.RefName())
		value := fmt.Sprintf(`vars.get("%s")`, ref)
		if e.URLEncode {
			value = fmt.Sprintf(`URLEncoder.encode(vars.get("%s"), "UTF-8")`, ref)
		}
		lines = append(lines, fmt.Sprintf(`if (vars.get("%s") != null) { paramParts.add("%s=" + %s); }`, ref, escapeJavaString(e.Name), value))
	}
	return fmt.Sprintf(signingScriptTemplate, strings.Join(lines, "\n"))
}

// RenderScriptBlock 把脚本片段渲染为可复制的文本块.
func RenderScriptBlock(set ScriptSet) string {
	const rule = "------------------------------------------------------------"
	var b strings.Builder
	fmt.Fprintf(&b, "\n--- 用例: %s ---\n", set.CaseName)
	if set.VariableDefs != "" {
		b.WriteString(rule + "\n(1) 前置脚本 (JSR223PreProcessor - 定义数据)\n" + rule + "\n")
		b.WriteString("```beanshell\n" + set.VariableDefs + "\n```\n\n")
	}
	b.WriteString(rule + "\n(2) 前置脚本 (JSR223PreProcessor - 计算签名)\n" + rule + "\n")
	b.WriteString("```beanshell\n" + set.SigningScript + "\n```\n\n")
	b.WriteString(rule + "\n(3) 请求体 (Raw)\n" + rule + "\n")
	b.WriteString("```text\n" + set.RequestBody + "\n```")
	return b.String()
}
