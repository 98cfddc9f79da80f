package analysis

// UnknownService is returned for ports missing from the table.
const UnknownService = "Unknown Service"

var commonPorts = map[int]string{
	20:    "FTP Data Transfer",
	21:    "FTP Control",
	22:    "SSH (Secure Shell)",
	23:    "Telnet",
	25:    "SMTP (Email Sending)",
	53:    "DNS (Domain Name System)",
	80:    "HTTP (Web Traffic)",
	110:   "POP3 (Email Retrieval)",
	123:   "NTP (Network Time Protocol)",
	137:   "NetBIOS Name Service",
	138:   "NetBIOS Datagram Service",
	139:   "NetBIOS Session Service",
	143:   "IMAP (Email Retrieval)",
	161:   "SNMP (Simple Network Management Protocol)",
	162:   "SNMP Trap",
	179:   "BGP (Border Gateway Protocol)",
	194:   "IRC (Internet Relay Chat)",
	443:   "HTTPS (Secure Web Traffic)",
	445:   "SMB (Windows File Sharing)",
	465:   "SMTP (Secure Email Sending)",
	500:   "IKE (Internet Key Exchange)",
	514:   "Syslog",
	520:   "RIP (Routing Information Protocol)",
	554:   "RTSP (Streaming Protocol)",
	587:   "SMTP (Submission)",
	593:   "RPC over HTTP",
	631:   "IPP (Internet Printing Protocol)",
	636:   "LDAPS (Secure LDAP)",
	873:   "rsync",
	993:   "IMAPS (Secure IMAP)",
	995:   "POP3S (Secure POP3)",
	1025:  "Microsoft RPC",
	1080:  "SOCKS Proxy",
	1194:  "OpenVPN",
	1433:  "Microsoft SQL Server",
	1434:  "Microsoft SQL Monitor",
	1521:  "Oracle Database",
	1723:  "PPTP (VPN)",
	1900:  "SSDP (UPnP)",
	2049:  "NFS (Network File System)",
	3128:  "HTTP Proxy",
	3268:  "Global Catalog (LDAP)",
	3306:  "MySQL Database",
	3389:  "RDP (Remote Desktop Protocol)",
	3690:  "Subversion",
	3899:  "Radmin (Remote Admin)",
	5000:  "UPnP / Web Services",
	5432:  "PostgreSQL Database",
	5631:  "pcAnywhere",
	5900:  "VNC Remote Desktop",
	5985:  "Windows Remote Management (HTTP)",
	5986:  "Windows Remote Management (HTTPS)",
	6000:  "X11 Display Server",
	6379:  "Redis Database",
	8080:  "HTTP Proxy / Web Traffic",
	8443:  "HTTPS (Alternative Port)",
	9000:  "SonarQube",
	9090:  "HTTP Alternative",
	10000: "Webmin",
}

// GetServiceName returns the common name for a port, or UnknownService.
func GetServiceName(port int) string {
	if name, ok := commonPorts[port]; ok {
		return name
	}
	return UnknownService
}
