/*
 * @Description: 应用路由表
 * @Author: 安知鱼
 * @Date: 2025-06-15 11:30:55
 * @LastEditTime: 2025-09-21 16:10:28
 * @LastEditors: 安知鱼
 */
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-cms/internal/app/middleware"
	auth_handler "github.com/anzhiyu-c/anheyu-cms/pkg/handler/auth"
	category_handler "github.com/anzhiyu-c/anheyu-cms/pkg/handler/category"
	contact_handler "github.com/anzhiyu-c/anheyu-cms/pkg/handler/contact"
	post_handler "github.com/anzhiyu-c/anheyu-cms/pkg/handler/post"
)

// Router 封装了应用的所有路由和其依赖的处理器。
type Router struct {
	authHandler     *auth_handler.Handler
	postHandler     *post_handler.Handler
	categoryHandler *category_handler.Handler
	contactHandler  *contact_handler.Handler
	mw              *middleware.Middleware
}

// NewRouter 是 Router 的构造函数，通过依赖注入接收所有处理器。
func NewRouter(
	authHandler *auth_handler.Handler,
	postHandler *post_handler.Handler,
	categoryHandler *category_handler.Handler,
	contactHandler *contact_handler.Handler,
	mw *middleware.Middleware,
) *Router {
	return &Router{
		authHandler:     authHandler,
		postHandler:     postHandler,
		categoryHandler: categoryHandler,
		contactHandler:  contactHandler,
		mw:              mw,
	}
}

// Register 把所有路由挂载到 gin 引擎上。
func (r *Router) Register(engine *gin.Engine) {
	engine.Use(middleware.Cors())

	apiGroup := engine.Group("/api")

	r.registerAuthRoutes(apiGroup)
	r.registerPostRoutes(apiGroup)
	r.registerCategoryRoutes(apiGroup)
	r.registerContactRoutes(apiGroup)
}

func (r *Router) registerAuthRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	{
		auth.POST("/login", r.authHandler.Login)
		auth.POST("/refresh", r.authHandler.Refresh)
	}

	authAdmin := api.Group("/auth").Use(r.mw.JWTAuth())
	{
		authAdmin.GET("/profile", r.authHandler.GetProfile)
		authAdmin.PUT("/password", r.authHandler.ChangePassword)
	}
}

func (r *Router) registerPostRoutes(api *gin.RouterGroup) {
	// 公开接口：JWTAuthOptional 让已登录的管理端在同一端点看到全部状态
	postsPublic := api.Group("/public")
	{
		postsPublic.GET("/posts", r.mw.JWTAuthOptional(), r.postHandler.List)
		postsPublic.GET("/posts/featured", r.mw.JWTAuthOptional(), r.postHandler.ListFeatured)
		postsPublic.GET("/posts/:slugOrId", r.postHandler.GetPublic)
		postsPublic.GET("/search", r.mw.JWTAuthOptional(), r.postHandler.Search)
		postsPublic.GET("/tags", r.postHandler.ListTags)
	}

	// 管理员专属的文章接口，写请求先经过表单解码中间件
	postsAdmin := api.Group("/posts").Use(r.mw.JWTAuth(), r.mw.AdminAuth())
	{
		postsAdmin.GET("", r.postHandler.List)
		postsAdmin.GET("/check-slug", r.postHandler.CheckSlug)
		postsAdmin.GET("/stats", r.postHandler.Stats)
		postsAdmin.GET("/:id", r.postHandler.Get)
		postsAdmin.POST("", middleware.ParseDocumentForm(), r.postHandler.Create)
		postsAdmin.PUT("/:id", middleware.ParseDocumentForm(), r.postHandler.Update)
		postsAdmin.DELETE("/:id", r.postHandler.Delete)
		postsAdmin.POST("/reindex", r.postHandler.RebuildIndex)
	}
}

func (r *Router) registerCategoryRoutes(api *gin.RouterGroup) {
	categoriesPublic := api.Group("/public/categories")
	{
		categoriesPublic.GET("", r.mw.JWTAuthOptional(), r.categoryHandler.List)
	}

	categoriesAdmin := api.Group("/categories").Use(r.mw.JWTAuth(), r.mw.AdminAuth())
	{
		categoriesAdmin.GET("", r.categoryHandler.List)
		categoriesAdmin.GET("/stats", r.categoryHandler.Stats)
		categoriesAdmin.GET("/:id", r.categoryHandler.Get)
		categoriesAdmin.POST("", r.categoryHandler.Create)
		categoriesAdmin.PUT("/reorder", r.categoryHandler.Reorder)
		categoriesAdmin.PUT("/:id", r.categoryHandler.Update)
		categoriesAdmin.DELETE("/:id", r.categoryHandler.Delete)
	}
}

func (r *Router) registerContactRoutes(api *gin.RouterGroup) {
	// 公开提交入口，带限速
	contactPublic := api.Group("/public/contact")
	{
		contactPublic.POST("", middleware.ContactSubmitRateLimit(), r.contactHandler.Submit)
	}

	contactsAdmin := api.Group("/contacts").Use(r.mw.JWTAuth(), r.mw.AdminAuth())
	{
		contactsAdmin.GET("", r.contactHandler.List)
		contactsAdmin.GET("/stats", r.contactHandler.Stats)
		contactsAdmin.GET("/export", r.contactHandler.Export)
		contactsAdmin.GET("/:id", r.contactHandler.Get)
		contactsAdmin.PUT("/:id", r.contactHandler.Update)
		contactsAdmin.PUT("/:id/read", r.contactHandler.MarkRead)
		contactsAdmin.DELETE("/:id", r.contactHandler.Delete)
	}
}
