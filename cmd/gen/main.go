package main

import (
	"bizhub/internal/infra/persistence/model"

	"gorm.io/gen"
)

func main() {
	models := []any{
		model.UserModel{},
		model.ProfileModel{},
		model.CredentialModel{},
		model.RefreshTokenModel{},
		model.EmailVerificationModel{},
		model.BusinessModel{},
		model.BusinessAccessModel{},
		model.InvitationModel{},
		model.NotificationModel{},
		model.UserDeviceModel{},
		model.PushLogModel{},
		model.CouponModel{},
		model.PaymentTransactionModel{},
		model.CategoryModel{},
		model.ProductModel{},
		model.SaleModel{},
		model.SaleItemModel{},
	}

	gen := gen.NewGenerator(gen.Config{
		OutPath: "./internal/infra/persistence/postgres/query",
	})

	gen.ApplyBasic(models...)

	gen.Execute()
}
