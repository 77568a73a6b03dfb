// Package middleware 提供了 HTTP 請求處理的中間件。
//
// 這個包包含了各種中間件函數，用於在 HTTP 請求處理過程中執行額外的操作。
// 這些中間件可以用於身份驗證、請求頻率限制等跨請求的功能。
package middleware
