package normalize

import "strings"

// Email 返回用于存储和比较的规范化邮箱地址：去掉首尾空白并统一小写，
// 保证 email 查找满足大小写不敏感。
func Email(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
