package repository

import (
	bankRepo "bookinghub/database/repository/bank"
	bookingRepo "bookinghub/database/repository/booking"
	providerRepo "bookinghub/database/repository/provider"
	recordsRepo "bookinghub/database/repository/records"
	userRepo "bookinghub/database/repository/user"
	verificationRepo "bookinghub/database/repository/verification"
)

// Re-export the BookingRepository interface and constructor.
type BookingRepository = bookingRepo.BookingRepository

type BookingSubscription = bookingRepo.Subscription

var NewMongoBookingRepo = bookingRepo.NewMongoBookingRepo

// Re-export the ProviderRepository interface and constructor.
type ProviderRepository = providerRepo.ProviderRepository

var NewMongoProviderRepo = providerRepo.NewMongoProviderRepo

// Re-export the UserRepository interface and constructor.
type UserRepository = userRepo.UserRepository

var NewMongoUserRepository = userRepo.NewMongoUserRepo

// Re-export the VerificationRepository interface and constructor.
type VerificationRepository = verificationRepo.VerificationRepository

var NewMongoVerificationRepo = verificationRepo.NewMongoVerificationRepo

// Re-export the contact and bank repositories.
type ContactRecordRepository = recordsRepo.ContactRecordRepository

var NewMongoRecordRepo = recordsRepo.NewMongoRecordRepo

type BankLinkRepository = bankRepo.BankLinkRepository

var NewMongoBankRepo = bankRepo.NewMongoBankRepo
