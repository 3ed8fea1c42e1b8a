package main

import (
	"log"
	"net/http"
	"os"

	"pdf-translator-web/handlers"
	"pdf-translator-web/middleware"
	"pdf-translator-web/translator"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := translator.LoadConfig()
	fonts := translator.NewFontResolver(cfg.FontsDir)
	handlers.Init(cfg, fonts)

	for _, dir := range []string{cfg.LogDir, "data"} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("创建目录失败 %s: %v", dir, err)
		}
	}

	r := gin.Default()

	// 最大上传文件大小 (100MB)
	r.MaxMultipartMemory = 100 << 20

	// 应用会话中间件到所有路由
	r.Use(middleware.SessionMiddleware())

	// API 路由
	api := r.Group("/api")
	{
		api.POST("/translate", handlers.TranslateHandler)
		api.GET("/status/:taskId", handlers.GetStatusHandler)
		api.GET("/download/:taskId", handlers.DownloadHandler)
		api.GET("/tasks", handlers.GetTasksHandler)
		api.GET("/languages", handlers.GetLanguagesHandler)
	}

	// 静态前端目录存在时由服务端托管
	if stat, err := os.Stat("static"); err == nil && stat.IsDir() {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir("static"))))
	}

	log.Printf("PDF翻译服务器启动在 http://localhost:%s", cfg.Port)
	log.Println("会话隔离已启用 - 每个用户的任务和文件完全独立")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("服务器退出: %v", err)
	}
}
