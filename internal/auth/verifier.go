package auth

import "golang.org/x/crypto/bcrypt"

// CredentialVerifier は保存済みシークレットと入力シークレットの照合を行う。
// 平文比較とハッシュ比較を呼び出し側の変更なしに差し替えるための境界。
type CredentialVerifier interface {
	// Verify は照合に成功した場合のみtrueを返す。
	Verify(stored, presented string) bool
}

// PlainVerifier は平文シークレットを直接比較する。
// デモ用の互換実装であり、本番運用ではBcryptVerifierを使用すること。
type PlainVerifier struct{}

// Verify は保存値と入力値の単純一致を判定する。
func (PlainVerifier) Verify(stored, presented string) bool {
	return stored == presented
}

// BcryptVerifier はbcryptハッシュとして保存されたシークレットを照合する。
type BcryptVerifier struct{}

// Verify はbcrypt.CompareHashAndPasswordで照合する（定数時間比較）。
func (BcryptVerifier) Verify(stored, presented string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(presented)) == nil
}

// NewVerifier は設定値（"plain" | "bcrypt"）に対応するCredentialVerifierを返す。
// 不明な値はPlainVerifierにフォールバックする。
func NewVerifier(kind string) CredentialVerifier {
	if kind == "bcrypt" {
		return BcryptVerifier{}
	}
	return PlainVerifier{}
}
