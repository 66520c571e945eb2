package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Generating story for %s":       "%s のストーリー画像を生成中",
		"Loaded %d fonts":               "%d 個のフォントを読み込みました",
		"Extracted metadata: %s":        "メタデータを抽出しました: %s",
		"Built gradient %s":             "グラデーションを作成しました: %s",
		"Laid out %d nodes":             "%d 個のノードを配置しました",
		"Rasterized story: %d bytes":    "ストーリー画像をラスタライズしました: %d バイト",
		"Story generated in %d ms":      "ストーリー画像を %d ms で生成しました",
		"Output saved to %s":            "出力を %s に保存しました",
		"Summary saved to %s":           "サマリーを %s に保存しました",
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",

		// Extract stage
		"Fetching page %s":               "ページを取得中: %s",
		"Parsed page: title=%q image=%q": "ページを解析しました: title=%q image=%q",

		// Sample and gradient stages
		"Fetching image %s":               "画像を取得中: %s",
		"Sampled %s %dx%d image: %s (%s)": "%s の %dx%d 画像をサンプリングしました: %s (%s)",
		"Gradient %s -> %s":               "グラデーション %s -> %s",

		// Fonts stage
		"Loaded font %s (%d bytes)": "フォント %s を読み込みました (%d バイト)",

		// Rasterize stage
		"Rasterizing %dx%d document with %s engine": "%dx%d のドキュメントを %s エンジンでラスタライズ中",
		"Rasterized %d bytes":                       "%d バイトをラスタライズしました",

		// Server
		"Listening on %s":      "%s で待ち受け中",
		"%s %s -> %d (%s)":     "%s %s -> %d (%s)",
		"Shutting down server": "サーバーを停止中",

		// Warnings
		"Font %s unavailable, using %s fallback: %s": "フォント %s を取得できません。%s フォールバックを使用します: %s",
		"Writing debug output to %s":                 "デバッグ出力先: %s",
		"Failed to save debug output: %s":            "デバッグ出力の保存に失敗しました: %s",

		// Errors
		"Failed to load fonts: %s":            "フォントの読み込みに失敗しました: %s",
		"Failed to extract metadata: %s":      "メタデータの抽出に失敗しました: %s",
		"Failed to build gradient: %s":        "グラデーションの作成に失敗しました: %s",
		"Failed to lay out story: %s":         "ストーリーのレイアウトに失敗しました: %s",
		"Failed to rasterize story: %s":       "ストーリーのラスタライズに失敗しました: %s",
		"Failed to write output: %s":          "出力の書き込みに失敗しました: %s",
		"Failed to write summary: %s":         "サマリーの書き込みに失敗しました: %s",
		"Failed to generate story for %s: %s": "%s のストーリー画像生成に失敗しました: %s",
	})
}
