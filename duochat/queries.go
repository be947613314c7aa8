// Copyright (c) The duochat authors. All rights reserved.

package duochat

// GraphQL documents sent through the [Transport]. The chat mutation exists
// in one variant per capability tier; each variant declares exactly the
// variables its tier supports, so older deployments never see fields their
// schema lacks.

const (
	queryChatAvailable = `
	query duoChatAvailable {
	  currentUser {
	    duoChatAvailable
	  }
	}`

	queryMetadataVersion = `
	query duoChatMetadataVersion {
	  metadata {
	    version
	  }
	}`

	queryLegacyVersion = `
	query duoChatLegacyVersion {
	  version
	}`

	queryConversationTypes = `
	query duoChatConversationTypes {
	  __type(name: "AiConversationsThreadsConversationType") {
	    enumValues {
	      name
	    }
	  }
	}`

	mutationChatBase = `
	mutation duoChat($question: String!, $clientSubscriptionId: String) {
	  aiAction(
	    input: {
	      chat: { content: $question }
	      clientSubscriptionId: $clientSubscriptionId
	    }
	  ) {
	    requestId
	    errors
	  }
	}`

	mutationChatWithOrigin = `
	mutation duoChat(
	  $question: String!
	  $clientSubscriptionId: String
	  $platformOrigin: String!
	) {
	  aiAction(
	    input: {
	      chat: { content: $question }
	      clientSubscriptionId: $clientSubscriptionId
	      platformOrigin: $platformOrigin
	    }
	  ) {
	    requestId
	    errors
	  }
	}`

	mutationChatWithContext = `
	mutation duoChat(
	  $question: String!
	  $clientSubscriptionId: String
	  $platformOrigin: String!
	  $additionalContext: [AiAdditionalContextInput!]
	) {
	  aiAction(
	    input: {
	      chat: { content: $question, additionalContext: $additionalContext }
	      clientSubscriptionId: $clientSubscriptionId
	      platformOrigin: $platformOrigin
	    }
	  ) {
	    requestId
	    errors
	  }
	}`

	mutationChatThreaded = `
	mutation duoChat(
	  $question: String!
	  $clientSubscriptionId: String
	  $platformOrigin: String!
	  $additionalContext: [AiAdditionalContextInput!]
	  $conversationType: AiConversationsThreadsConversationType
	  $threadId: AiConversationThreadID
	) {
	  aiAction(
	    input: {
	      chat: { content: $question, additionalContext: $additionalContext }
	      clientSubscriptionId: $clientSubscriptionId
	      platformOrigin: $platformOrigin
	      conversationType: $conversationType
	      threadId: $threadId
	    }
	  ) {
	    requestId
	    threadId
	    errors
	  }
	}`

	queryMessagesByRequestID = `
	query duoChatMessages($requestIds: [ID!], $roles: [AiMessageRole!]) {
	  aiMessages(requestIds: $requestIds, roles: $roles) {
	    nodes {
	      requestId
	      role
	      content
	      timestamp
	      errors
	    }
	  }
	}`

	queryMessageByID = `
	query duoChatMessage($messageId: ID!) {
	  aiMessage(id: $messageId) {
	    requestId
	    role
	    content
	    timestamp
	  }
	}`

	queryThreadMessages = `
	query duoChatThreadMessages($threadId: AiConversationThreadID!) {
	  aiConversationThread(id: $threadId) {
	    messages {
	      nodes {
	        requestId
	        role
	        content
	        timestamp
	      }
	    }
	  }
	}`

	queryThreadLastMessage = `
	query duoChatThreadLastMessage($threadId: AiConversationThreadID!) {
	  aiConversationThread(id: $threadId) {
	    lastMessage {
	      requestId
	      role
	      content
	      timestamp
	    }
	  }
	}`
)
