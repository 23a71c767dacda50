package cli

import "github.com/kandji-inc/kpkg/internal/app"

func newAppService() app.Service {
	return app.NewService()
}
