// Package router はHTTPルーティングを組み立てます。
package router

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	taskhandler "task_backend/internal/feature/task/transport/handler"
	userhandler "task_backend/internal/feature/user/transport/handler"
)

// Deps はルーターに登録するハンドラーとミドルウェアです。
type Deps struct {
	Auth   *userhandler.AuthHandler
	Users  *userhandler.UserHandler
	Tasks  *taskhandler.TaskHandler
	Health gin.HandlerFunc

	// Guard は認証必須ルートに適用されるミドルウェアです。
	Guard gin.HandlerFunc
	// LoginLimiter は /auth/login のみに適用されます。nilの場合は制限しません。
	LoginLimiter gin.HandlerFunc

	CORSAllowOrigins []string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.Default()

	if len(d.CORSAllowOrigins) > 0 {
		r.Use(cors.New(corsConfig(d.CORSAllowOrigins)))
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", d.Health)
	r.HEAD("/healthz", d.Health)

	// ログイン（JWT 発行）
	login := []gin.HandlerFunc{d.Auth.Login}
	if d.LoginLimiter != nil {
		login = append([]gin.HandlerFunc{d.LoginLimiter}, login...)
	}
	r.POST("/auth/login", login...)

	// ユーザー管理は認証不要
	users := r.Group("/users")
	{
		users.POST("", d.Users.Create)
		users.GET("", d.Users.List)
		users.GET("/:id", d.Users.Get)
		users.PUT("/:id", d.Users.Update)
		users.DELETE("/:id", d.Users.Delete)
	}

	// タスク一覧のみ認証不要、それ以外は d.Guard を通過したリクエストのみ
	r.GET("/tasks", d.Tasks.List)
	tasks := r.Group("/tasks")
	tasks.Use(d.Guard)
	{
		tasks.POST("", d.Tasks.Create)
		tasks.GET("/:id", d.Tasks.Get)
		tasks.PUT("/:id", d.Tasks.Update)
		tasks.DELETE("/:id", d.Tasks.Delete)
	}

	return r
}

// corsConfig は許可オリジンから設定を組み立てます。"*" を含む場合は全オリジンを許可します。
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
