package internal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 参数常量.
const (
	pbkdf2Iterations = 100000 // OWASP 推荐的最小迭代次数
	pbkdf2KeyLen     = 32     // AES-256 需要 32 字节密钥
)

// encryptedPrefix 配置文件中加密值的前缀.
const encryptedPrefix = "enc:"

var keySalt = []byte("casegen-v1-salt")

// CryptoManager 加密管理器.
type CryptoManager struct {
	key []byte
}

// NewCryptoManager 使用 PBKDF2 从口令派生 AES-256 密钥.
func NewCryptoManager(password string) *CryptoManager {
	return &CryptoManager{
		key: pbkdf2.Key([]byte(password), keySalt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New),
	}
}

// Encrypt 使用AES-GCM加密数据.
func (cm *CryptoManager) Encrypt(plaintext []byte) ([]byte, error) {
	gcm, err := cm.gcm()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("生成nonce失败: %w", err)
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt 使用AES-GCM解密数据.
func (cm *CryptoManager) Decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := cm.gcm()
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("密文长度不足")
	}
	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("解密失败: %w", err)
	}
	return plaintext, nil
}

func (cm *CryptoManager) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(cm.key)
	if err != nil {
		return nil, fmt.Errorf("创建AES cipher失败: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("创建GCM模式失败: %w", err)
	}
	return gcm, nil
}

// EncryptString 加密字符串，空串原样返回.
func (cm *CryptoManager) EncryptString(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	ct, err := cm.Encrypt([]byte(s))
	if err != nil {
		return "", err
	}
	return encryptedPrefix + base64.StdEncoding.EncodeToString(ct), nil
}

// DecryptString 解密 EncryptString 的结果，未加密的值原样返回.
func (cm *CryptoManager) DecryptString(s string) (string, error) {
	if !strings.HasPrefix(s, encryptedPrefix) {
		return s, nil
	}
	ct, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, encryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("解码密文失败: %w", err)
	}
	pt, err := cm.Decrypt(ct)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}

// GenerateKey 生成随机加密密钥.
func GenerateKey() (string, error) {
	key := make([]byte, 32) // 256位密钥
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("生成密钥失败: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// loadOrCreateSecret 读取本机密钥文件，不存在时生成.
func loadOrCreateSecret(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if secret := strings.TrimSpace(string(data)); secret != "" {
			return secret, nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("读取密钥文件失败: %w", err)
	}

	secret, err := GenerateKey()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(secret), 0600); err != nil {
		return "", fmt.Errorf("写入密钥文件失败: %w", err)
	}
	return secret, nil
}
