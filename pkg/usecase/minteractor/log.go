// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_avatar_tinker/pkg/shared/logging"

// logTinkerInfo はINFOログを出力する。
func logTinkerInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logTinkerDebug はDEBUGログを出力する。
func logTinkerDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil || !logger.IsLevelEnabled(logging.LOG_LEVEL_DEBUG) {
		return
	}
	logger.Debug(format, params...)
}

// logTinkerWarn はWARNログを出力する。
func logTinkerWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}

// logTinkerError はERRORログを出力する。
func logTinkerError(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Error(format, params...)
}
