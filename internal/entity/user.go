package entity

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"-"` // bcrypt hash, never serialized
}

/*
Mysql Schema:
CREATE DATABASE myappdb;
USE myappdb;

CREATE TABLE users (
	id INT AUTO_INCREMENT PRIMARY KEY,
	username VARCHAR(50) NOT NULL,
	email VARCHAR(50) NOT NULL,
	password VARCHAR(255) NOT NULL
);

// emails are intended to be unique, lookup happens by email on login
CREATE UNIQUE INDEX email_idx ON users(email);
*/
