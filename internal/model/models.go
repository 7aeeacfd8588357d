package model

// All returns every table the service owns, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&SubscriptionPlan{},
		&UserSubscription{},
		&Conversation{},
		&ChatMessage{},
		&KnowledgeDocument{},
		&ExerciseCategory{},
		&Exercise{},
	}
}
