package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pregchat/controllers"
	"pregchat/middlewares"
)

// Controllers はルーティングに載せるハンドラー一式
type Controllers struct {
	Auth     *controllers.AuthController
	Chat     *controllers.ChatController
	Medical  *controllers.MedicalController
	Medicine *controllers.MedicineController
	Feedback *controllers.FeedbackController
	Session  *controllers.SessionController
	Wellness *controllers.WellnessController
}

func SetupRouter(log *logrus.Logger, ctrl Controllers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.Logger(log))

	// CORSの設定
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// 認証
	r.POST("/signup", ctrl.Auth.Signup)
	r.POST("/login", ctrl.Auth.Login)

	// チャット
	r.POST("/chat", ctrl.Chat.HandleChat)

	// 医療データ
	r.GET("/medical_data/:user_id", ctrl.Medical.GetMedicalData)
	r.PUT("/medical_data/:user_id", ctrl.Medical.UpdateMedicalData)
	r.GET("/resources", ctrl.Medical.GetResources)

	// 服薬リマインダー
	r.GET("/medicines/:user_id", ctrl.Medicine.GetMedicines)
	r.POST("/medicines", ctrl.Medicine.AddMedicine)
	r.DELETE("/medicines/:medicine_id", ctrl.Medicine.DeleteMedicine)

	// フィードバック
	r.POST("/feedback", ctrl.Feedback.SubmitFeedback)
	r.GET("/feedback/:user_id", ctrl.Feedback.GetFeedback)

	// 補助機能
	r.POST("/talk-to-baby", ctrl.Wellness.TalkToBaby)
	r.GET("/partner-tips/:user_id", ctrl.Wellness.PartnerTips)
	r.GET("/trimester-checklist/:user_id", ctrl.Wellness.TrimesterChecklist)
	r.GET("/emergency-labor-checklist", ctrl.Wellness.EmergencyLaborChecklist)

	// セッション履歴
	r.GET("/sessions/:user_id", ctrl.Session.GetUserSessions)
	r.GET("/session/:session_key", ctrl.Session.GetSessionDetails)

	// セッション管理API
	r.POST("/create-session", ctrl.Session.CreateSession)
	r.GET("/display-sessions", ctrl.Session.DisplayAllSessions)
	r.DELETE("/delete-session/:session_id", ctrl.Session.DeleteSession)
	r.PUT("/rename-session", ctrl.Session.RenameSession)

	return r
}
