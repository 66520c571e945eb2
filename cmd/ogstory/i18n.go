// Package main provides localization for the ogstory CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Configuration": "設定ファイル",
		"Output":        "出力先",
		"Rendering":     "描画",
		"Fonts":         "フォント",
		"Network":       "ネットワーク",
		"Server":        "サーバー",
		"Debug":         "デバッグ",
		"Logging":       "ログ",

		// Commands
		"Generate story images from Open Graph metadata": "Open Graphメタデータからストーリー画像を生成",
		"Generate a story image for a URL":               "URLのストーリー画像を生成",
		"Serve story images over HTTP":                   "HTTPでストーリー画像を提供",

		// Output flags
		"Output PNG file path":                               "出力PNGファイルパス",
		"Print the image as a data URI":                      "画像をデータURIとして出力",
		"Output execution summary to file (Markdown format)": "実行サマリーをファイルに出力（Markdown形式）",

		// Common flags
		"YAML configuration file":                                                "YAML設定ファイル",
		"Rasterizer engine (gg, browser)":                                        "ラスタライザーエンジン（gg, browser）",
		"Dominant color sampler (histogram, kmeans)":                             "主要色の抽出方式（histogram, kmeans）",
		"Path to Chrome executable":                                              "Chrome実行ファイルのパス",
		"Disable the Chrome sandbox":                                             "Chromeのサンドボックスを無効化",
		"Font fallback when the CDN fails (none, local, bundled)":                "CDN失敗時のフォントフォールバック（none, local, bundled）",
		"Directory of font files for the local fallback":                         "ローカルフォールバック用のフォントディレクトリ",
		"Fetch timeout in milliseconds":                                          "取得のタイムアウト（ミリ秒）",
		"Enable debug output":                                                    "デバッグ出力を有効化",
		"Directory for debug output (serve writes one subdirectory per request)": "デバッグ出力のディレクトリ (serve はリクエストごとにサブディレクトリを作成)",
		"Log level (debug, info, warn, error)":                                   "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                                                "全てのログ出力を抑制",

		// Server flags
		"Listen address (default: :8080)":                "待ち受けアドレス（デフォルト: :8080）",
		"Requests per second per client (0 = unlimited)": "クライアントごとの毎秒リクエスト数（0 = 無制限）",
		"Rate limiter burst size":                        "レート制限のバーストサイズ",

		// Error messages
		"URL argument is required": "URL引数が必要です",

		// Summary content
		"Story Summary":    "ストーリーサマリー",
		"Generated At":     "生成日時",
		"Page":             "ページ",
		"Gradient":         "グラデーション",
		"Timing":           "処理時間",
		"Settings":         "設定",
		"Item":             "項目",
		"Value":            "値",
		"Page Title":       "ページタイトル",
		"Description":      "説明",
		"Host":             "ホスト",
		"URL":              "URL",
		"Image URL":        "画像URL",
		"Base Color":       "基本色",
		"Harmonized Color": "調和色",
		"CSS":              "CSS",
		"Extract":          "抽出",
		"Layout":           "レイアウト",
		"Rasterize":        "ラスタライズ",
		"Total":            "合計",
		"Preloaded":        "読み込み済み",
		"Engine":           "エンジン",
		"Sampler":          "サンプラー",
		"Font Fallback":    "フォントフォールバック",
		"File":             "ファイル",
		"Image Size":       "画像サイズ",
		"File Size":        "ファイルサイズ",
	})
}
