package internal

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Sign 计算接口签名：MD5(secret + "_app=" + appKey + "&_s=&_t=" + time + "&" + argsBody + secret) 的大写十六进制.
func Sign(secret, appKey, ts, argsBody string) string {
	stringToSign := StringToSign(secret, appKey, ts, argsBody)
	sum := md5.Sum([]byte(stringToSign))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// StringToSign 返回参与签名的原文.
func StringToSign(secret, appKey, ts, argsBody string) string {
	return secret + "_app=" + appKey + "&_s=&_t=" + ts + "&" + argsBody + secret
}

// JavaURLEncode 与 java.net.URLEncoder.encode(s, "UTF-8") 结果一致.
func JavaURLEncode(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "%2A", "*")
	return strings.ReplaceAll(escaped, "~", "%7E")
}

// SignedRequest 本地计算出的签名请求.
type SignedRequest struct {
	ArgsBody     string `json:"args_body"`
	Time         string `json:"time"`
	StringToSign string `json:"string_to_sign"`
	Signature    string `json:"signature"`
	Body         string `json:"body"`
}

// Signer 在本地复现签名脚本，用于核对或直接发起请求.
type Signer struct {
	Secret string
	AppKey string
	Now    func() time.Time
}

// NewSigner 创建签名器.
func NewSigner(secret, appKey string) *Signer {
	return &Signer{Secret: secret, AppKey: appKey, Now: time.Now}
}

// Resolve 用变量表解析脚本片段并签名.
// vars 中缺失的引用被跳过，与脚本中的 != null 判断一致.
func (s *Signer) Resolve(set ScriptSet, vars map[string]string) SignedRequest {
	merged := make(map[string]string, len(vars)+len(set.Literals))
	for k, v := range vars {
		merged[k] = v
	}
	for _, l := range set.Literals {
		merged[l.Name] = l.Value.Text()
	}

	parts := make([]string, 0, len(set.Entries))
	for _, e := range set.Entries {
		if !e.Value.IsReference() {
			parts = append(parts, e.Name+"="+literalText(e.Value))
			continue
		}
		v, ok := merged[e.Value.RefName()]
		if !ok {
			continue
		}
		if e.URLEncode {
			v = JavaURLEncode(v)
		}
		parts = append(parts, e.Name+"="+v)
	}
	argsBody := strings.Join(parts, "&")

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	ts := strconv.FormatInt(now().Unix(), 10)
	signature := Sign(s.Secret, s.AppKey, ts, argsBody)

	return SignedRequest{
		ArgsBody:     argsBody,
		Time:         ts,
		StringToSign: StringToSign(s.Secret, s.AppKey, ts, argsBody),
		Signature:    signature,
		Body:         "_app=" + s.AppKey + "&_s=&_sign=" + signature + "&_t=" + ts + "&" + argsBody,
	}
}

// EnvValues 把环境变量库转为变量表.
func EnvValues(lib []EnvVariable) map[string]string {
	values := make(map[string]string, len(lib))
	for _, v := range lib {
		values[v.Name] = v.Value
	}
	return values
}
