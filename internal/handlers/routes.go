package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts every API route on api, which is expected to carry the auth middleware.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	org := api.Group("/org")
	{
		org.POST("/create-org", h.CreateOrg)
		org.POST("/add-user", h.AddUserToOrg)
		org.POST("/invite-user", h.InviteUserToOrg)
		org.POST("/fetch-users", h.FetchUsersInOrg)
		org.POST("/fetch-pending-invites", h.FetchPendingInvites)
		org.POST("/remove-user", h.RemoveUserFromOrg)
		org.POST("/change-user-role", h.ChangeUserRole)
		org.POST("/update-org", h.UpdateOrg)
		org.POST("/fetch-org-details", h.FetchOrgDetails)
		org.POST("/fetch-orgs-query", h.FetchOrgsByQuery)
	}

	user := api.Group("/user")
	{
		user.GET("/by-email", h.GetUserByEmail)
		user.POST("/signup", h.Signup)
		user.POST("/query", h.QueryUsers)
		user.PUT("/update-profile", h.UpdateProfile)
		user.POST("/resend-email-confirmation", h.ResendEmailConfirmation)
	}
	api.POST("/resend-invitation", h.ResendInvitation)

	doctor := api.Group("/doctor")
	{
		doctor.GET("", h.ListDoctors)
		doctor.POST("", h.CreateDoctor)
		doctor.GET("/search", h.SearchDoctors)
		doctor.GET("/organization/:orgId", h.GetDoctorsByOrganization)
		doctor.GET("/:doctorId", h.GetDoctor)
		doctor.PUT("/:doctorId", h.UpdateDoctor)
		doctor.PATCH("/:doctorId", h.PatchDoctor)
		doctor.DELETE("/:doctorId", h.DeleteDoctor)
	}

	calendar := api.Group("/calendar")
	{
		calendar.POST("/create", h.CreateCalendar)
		calendar.GET("/doctor/:doctor_id", h.GetDoctorCalendar)
		calendar.GET("/organization/:organization_id", h.GetOrganizationCalendars)
		calendar.POST("/share", h.ShareCalendar)
	}

	event := api.Group("/event")
	{
		event.POST("/create", h.CreateEvent)
		event.GET("/list", h.ListEvents)
		event.PUT("/update", h.UpdateEvent)
		event.DELETE("/delete", h.DeleteEvent)
	}

	agents := api.Group("/agents")
	{
		agents.GET("/all", h.GetAllAgents)
		agents.GET("/info/:agentId", h.GetAgentInfo)
		agents.POST("/update/:agentId", h.UpdateAgent)
		agents.POST("/set_phone/:agentId", h.SetAgentPhone)
		agents.DELETE("/delete_phone/:agentId", h.DeleteAgentPhone)
		agents.GET("/by_phone/:phoneNumber", h.GetAgentByPhone)
		agents.GET("/active-calls", h.GetActiveCalls)
		agents.DELETE("/delete/:agentId", h.DeleteAgent)
		agents.GET("/trunks", h.GetTrunks)
		agents.POST("/generate-id", h.GenerateAgentID)
		agents.GET("/by-org/:organizationId", h.GetAgentsByOrganization)
		agents.DELETE("/delete-by-org/:organizationId", h.DeleteAgentByOrganization)
		agents.POST("/add_transfer_phonenumber/:agentId", h.AddTransferPhoneNumber)
	}

	phones := api.Group("/phone-numbers")
	{
		phones.GET("", h.ListPhoneNumbers)
		phones.GET("/available", h.ListAvailablePhoneNumbers)
		phones.GET("/assigned", h.ListAssignedPhoneNumbers)
		phones.GET("/organization/:organizationId", h.ListOrganizationPhoneNumbers)
		phones.POST("/import-twilio-number", h.ImportTwilioNumber)
		phones.POST("/:phone_number/assign", h.AssignPhoneNumber)
		phones.POST("/:phone_number/unassign", h.UnassignPhoneNumber)
	}

	scheduled := api.Group("/scheduled")
	{
		scheduled.POST("/create", h.CreateSchedule)
		scheduled.GET("/agent/:agent_id", h.ListAgentSchedules)
		scheduled.GET("/organization/:organization_id/schedules", h.ListOrganizationSchedules)
		scheduled.GET("/:schedule_id", h.GetSchedule)
		scheduled.PUT("/:schedule_id", h.UpdateSchedule)
		scheduled.DELETE("/:schedule_id", h.DeleteSchedule)
	}

	kb := api.Group("/knowledge-bases")
	{
		kb.GET("", h.ListKnowledgeBases)
		kb.POST("", h.CreateKnowledgeBase)
		kb.GET("/:id", h.GetKnowledgeBase)
		kb.DELETE("/:id", h.DeleteKnowledgeBase)
		kb.GET("/:id/documents", h.ListDocuments)
		kb.POST("/:id/documents", h.CreateTextDocument)
		kb.POST("/:id/documents/file", h.UploadFileDocument)
		kb.POST("/:id/documents/url", h.CreateURLDocument)
		kb.DELETE("/:id/documents/:docId", h.DeleteDocument)
		kb.PATCH("/:id/documents/:docId/status/:action", h.SetDocumentStatus)
		kb.POST("/:id/documents/:docId/reindex", h.ReindexDocument)
		kb.GET("/:id/documents/:docId/segments", h.ListSegments)
		kb.PATCH("/:id/documents/:docId/segments/:segmentId/:action", h.SetSegmentStatus)
		kb.POST("/:id/test-retrieval", h.TestRetrieval)
		kb.GET("/:id/api-keys", h.ListDatasetAPIKeys)
		kb.POST("/:id/api-keys", h.CreateDatasetAPIKey)
	}

	dify := api.Group("/dify")
	{
		dify.POST("/monitoring", h.Monitoring)
		dify.POST("/conversations", h.ConversationsByAPIKey)
		dify.GET("/conversations", h.ListConversations)
		dify.POST("/get-app-by-key", h.GetAppByKey)
		dify.POST("/all-conversations", h.AllConversations)
		dify.GET("/get-all-agents", h.GetAllDifyAgents)
		dify.POST("/create-agent", h.CreateDifyAgent)
		dify.DELETE("/delete-agent", h.DeleteDifyAgent)
		dify.POST("/associate-agent", h.AssociateAgent)
	}
	api.POST("/model-config", h.ModelConfig)
	api.POST("/prompt-config", h.PromptConfig)

	stripe := api.Group("/stripe/v1")
	{
		stripe.GET("/customers", h.ListCustomers)
		stripe.POST("/customers", h.CreateCustomer)
		stripe.GET("/customers/:id", h.GetCustomer)
		stripe.DELETE("/customers/:id", h.DeleteCustomer)
		stripe.GET("/payment_methods", h.ListPaymentMethods)
		stripe.POST("/payment_methods", h.CreatePaymentMethod)
		stripe.POST("/payment_methods/:id/attach", h.AttachPaymentMethod)
		stripe.GET("/checkout/sessions", h.ListCheckoutSessions)
		stripe.POST("/checkout/sessions", h.CreateCheckoutSession)
		stripe.GET("/checkout/sessions/:id", h.GetCheckoutSession)
		stripe.GET("/products", h.ListProducts)
		stripe.POST("/products", h.CreateProduct)
		stripe.GET("/prices", h.ListPrices)
		stripe.POST("/subscription_items/:id/usage_records", h.ReportUsage)
		stripe.GET("/subscription_items/:id/usage_record_summaries", h.UsageSummary)
	}

	logs := api.Group("/conversation-logs")
	{
		logs.GET("", h.ConversationLogs)
		logs.POST("", h.SaveConversationLogs)
		logs.DELETE("", h.CleanConversationLogs)
	}
}
