package contracts

import "github.com/julienschmidt/httprouter"

// Handler is anything that can mount its routes on the shared router,
// letting the application wire booking and health endpoints the same way.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
