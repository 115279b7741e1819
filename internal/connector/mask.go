package connector

// fixedMask は短いトークンの固定長マスク表示。
const fixedMask = "********"

// MaskToken はアクセストークンの表示用マスクを決定的に生成する。
// 長さ8以下のトークンは固定長マスク、それより長い場合は
// 先頭4文字 + "****" + 末尾4文字のみを表示する。
func MaskToken(token string) string {
	if len(token) <= 8 {
		return fixedMask
	}
	return token[:4] + "****" + token[len(token)-4:]
}
