//go:build !cli
// +build !cli

package main

import (
	"embed"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend
var assets embed.FS

// 窗口尺寸.
const (
	windowWidth     = 1200
	windowHeight    = 820
	windowMinWidth  = 960
	windowMinHeight = 640
)

func main() {
	app, err := NewApp()
	if err != nil {
		panic("创建应用失败: " + err.Error())
	}

	err = wails.Run(&options.App{
		Title:     "Casegen 用例脚本生成",
		Width:     windowWidth,
		Height:    windowHeight,
		MinWidth:  windowMinWidth,
		MinHeight: windowMinHeight,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup:     app.Startup,
		OnShutdown:    app.Shutdown,
		OnDomReady:    app.DomReady,
		OnBeforeClose: app.BeforeClose,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		app.log.Error("wails run failed", "error", err)
		os.Exit(1)
	}
}
