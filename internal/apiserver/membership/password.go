package membership

import "crypto/rand"

// passwordAlphabet 初始密码字符集：去掉了 0/O、1/l/I 等易混淆字符
const passwordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generatePassword 生成 8 位初始密码（邮件发给新成员，登录后自行修改）
func generatePassword() string {
	b := make([]byte, 8)
	rand.Read(b)
	for i := range b {
		b[i] = passwordAlphabet[int(b[i])%len(passwordAlphabet)]
	}
	return string(b)
}
