package nats

import (
	"github.com/zhulik/pal"

	"spokd/internal/core"
)

func Provide() pal.ServiceDef {
	return pal.ProvideList(
		pal.Provide(&NATS{}),
		pal.Provide[core.CodeStore](&Codes{}),
	)
}
