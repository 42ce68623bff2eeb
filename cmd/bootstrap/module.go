package bootstrap

import (
	"rental-backend/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	LoggerModule,
	components.PersistenceModule,
	components.ClientModule,
	components.UseCaseModule,
	components.JobModule,
	components.HandlerModule,
)
