package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/teamrun --output domain/teamrun --outpkg teamrunmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name RosterProvider --dir ../usecase --output usecase --outpkg usecasemock --filename roster_provider_mock.go
